package model

// Tier is a subscription level. Ordering and limits live in the tier catalog,
// not here.
type Tier string

const (
	TierMember  Tier = "member"
	TierSilver  Tier = "silver"
	TierBronze  Tier = "bronze"
	TierDiamond Tier = "diamond"
	TierGold    Tier = "gold"
	TierVIP     Tier = "vip"
)

// Category is a task category. Exactly five exist.
type Category string

const (
	CategoryMain    Category = "main"
	CategorySocial  Category = "social"
	CategorySurveys Category = "surveys"
	CategoryTesting Category = "testing"
	CategoryAI      Category = "ai"
)

// Categories lists all task categories in canonical order.
var Categories = []Category{CategoryMain, CategorySocial, CategorySurveys, CategoryTesting, CategoryAI}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderGeek   Gender = "geek"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "pending"
	TaskStatusApproved TaskStatus = "approved"
	TaskStatusRejected TaskStatus = "rejected"
)

type TransactionType string

const (
	TransactionEarning      TransactionType = "earning"
	TransactionWithdrawal   TransactionType = "withdrawal"
	TransactionReferral     TransactionType = "referral"
	TransactionSubscription TransactionType = "subscription"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
	OrderRefunded  OrderStatus = "refunded"
)

type PaymentMethodType string

const PaymentMethodPayPal PaymentMethodType = "paypal"

type NotificationType string

const (
	NotificationTask         NotificationType = "task"
	NotificationPayment      NotificationType = "payment"
	NotificationSubscription NotificationType = "subscription"
	NotificationSystem       NotificationType = "system"
)
