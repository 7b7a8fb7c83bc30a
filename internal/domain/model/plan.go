package model

// PricePlan identifies an entry of the fixed price table.
type PricePlan string

const (
	PricePlanBasic   PricePlan = "basic"
	PricePlanPlus    PricePlan = "plus"
	PricePlanPremium PricePlan = "premium"
)

// PlanCurrency is the ISO currency code of plan prices.
const PlanCurrency = "krw"

// PlanDetails describes a purchasable plan.
type PlanDetails struct {
	Name string
	// Price is expressed in the smallest currency unit (KRW has no minor unit).
	Price int64
}

var priceTable = map[PricePlan]PlanDetails{
	PricePlanBasic:   {Name: "Basic", Price: 9900},
	PricePlanPlus:    {Name: "Plus", Price: 14900},
	PricePlanPremium: {Name: "Premium", Price: 24900},
}

// LookupPlan returns plan details from the price table.
func LookupPlan(plan PricePlan) (PlanDetails, bool) {
	details, ok := priceTable[plan]
	return details, ok
}
