package models

import (
	"time"
)

// 已知的资源类别，类别本身是开放字符串，新类别无需改动此处
const (
	CategoryFoodPantry          = "Food Pantry"
	CategoryCommunityFridge     = "Community Fridge"
	CategorySoupKitchen         = "Soup Kitchen"
	CategoryHotMeal             = "Hot Meal"
	CategoryYouthSupper         = "Youth Supper"
	CategorySeniorMeals         = "Senior Meals"
	CategoryGroceryDistribution = "Grocery Distribution"
	CategoryFoodBank            = "Food Bank"
)

// KnownCategories 前端筛选使用的类别列表
var KnownCategories = []string{
	CategoryFoodPantry,
	CategoryCommunityFridge,
	CategorySoupKitchen,
	CategoryHotMeal,
	CategoryYouthSupper,
	CategorySeniorMeals,
	CategoryGroceryDistribution,
	CategoryFoodBank,
}

// 核实来源
const (
	VerificationSourceInitial      = "initial"
	VerificationSourceManualReview = "manual_review"
)

// FoodResource 对应 food_resources 表
// 经纬度以文本保存，读取时再解析；Distance 只在请求内计算，不落库
type FoodResource struct {
	ID                  string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name                string     `json:"name" gorm:"type:text;not null"`
	Type                string     `json:"type" gorm:"type:varchar(50);not null;index"`
	Address             string     `json:"address" gorm:"type:text;not null"`
	Latitude            string     `json:"latitude" gorm:"type:text;not null"`
	Longitude           string     `json:"longitude" gorm:"type:text;not null"`
	Hours               *string    `json:"hours" gorm:"type:text"`
	Phone               *string    `json:"phone" gorm:"type:text"`
	AppointmentRequired bool       `json:"appointmentRequired" gorm:"not null;default:false"`
	Distance            *float64   `json:"distance,omitempty" gorm:"-"`
	LastVerifiedDate    *time.Time `json:"lastVerifiedDate" gorm:"column:last_verified_date"`
	VerificationSource  string     `json:"verificationSource" gorm:"type:varchar(50);not null;default:'initial'"`
	ReportedClosed      bool       `json:"reportedClosed" gorm:"not null;default:false;index"`
	ReportedClosedCount int        `json:"reportedClosedCount,string" gorm:"not null;default:0"`
	ReportedClosedAt    *time.Time `json:"reportedClosedAt" gorm:"column:reported_closed_at"`
	CreatedAt           time.Time  `json:"createdAt" gorm:"column:created_at;autoCreateTime"`
}

// TableName 指定表名
func (FoodResource) TableName() string {
	return "food_resources"
}

// Clone 返回一份独立副本，指针字段也会复制，内存存储返回数据时使用
func (r FoodResource) Clone() FoodResource {
	c := r
	if r.Hours != nil {
		v := *r.Hours
		c.Hours = &v
	}
	if r.Phone != nil {
		v := *r.Phone
		c.Phone = &v
	}
	if r.Distance != nil {
		v := *r.Distance
		c.Distance = &v
	}
	if r.LastVerifiedDate != nil {
		v := *r.LastVerifiedDate
		c.LastVerifiedDate = &v
	}
	if r.ReportedClosedAt != nil {
		v := *r.ReportedClosedAt
		c.ReportedClosedAt = &v
	}
	return c
}

// ResourceNeedingVerification 待核实列表中的一项，附带距上次核实的天数
type ResourceNeedingVerification struct {
	FoodResource
	DaysSinceVerification int `json:"daysSinceVerification"`
}

// VerificationReport 待核实报告及汇总数据
type VerificationReport struct {
	GeneratedAt       time.Time                     `json:"generatedAt"`
	DaysThreshold     int                           `json:"daysThreshold"`
	TotalResources    int                           `json:"totalResources"`
	NeedsVerification int                           `json:"needsVerification"`
	ReportedClosed    int                           `json:"reportedClosed"`
	UpToDate          int                           `json:"upToDate"`
	LocationsToVerify []ResourceNeedingVerification `json:"locationsToVerify"`
}
