package token

import "go.uber.org/fx"

// Module provides the capability token issuer via fx.
var Module = fx.Provide(newIssuer)

func newIssuer() Issuer {
	return NewNanoIssuer(DefaultLength)
}
