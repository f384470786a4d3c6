package domain

// Roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Catalog item types
const (
	ItemTypeCar  = "car"
	ItemTypePart = "part"
)

// Order Statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment Statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment Methods
const (
	PaymentMethodCashOnDelivery = "cash_on_delivery"
	PaymentMethodCard           = "card"
	PaymentMethodBankTransfer   = "bank_transfer"
	PaymentMethodFinancing      = "financing"
)

// Car attributes
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// Inventory log reasons
const (
	StockReasonOrderPlaced    = "order_placed"
	StockReasonOrderCancelled = "order_cancelled"
	StockReasonAdjustment     = "adjustment"
)

// List Exports for API
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var PaymentStatuses = []string{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

var PaymentMethods = []string{
	PaymentMethodCashOnDelivery,
	PaymentMethodCard,
	PaymentMethodBankTransfer,
	PaymentMethodFinancing,
}

var FuelTypes = []string{"petrol", "diesel", "hybrid", "electric", "lpg"}

var Transmissions = []string{"manual", "automatic", "cvt", "dct"}

var BodyTypes = []string{"sedan", "hatchback", "suv", "coupe", "convertible", "wagon", "pickup", "van"}

func IsValidPaymentMethod(m string) bool {
	return contains(PaymentMethods, m)
}

func IsValidItemType(t string) bool {
	return t == ItemTypeCar || t == ItemTypePart
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
