package models

import (
	"time"
)

// Rows as the document store holds them. Price stays text here; the
// catalog package parses it once on the way in.

type ProductDoc struct {
	ID            string    `gorm:"primaryKey;size:64"      bson:"_id"           json:"id"`
	Name          string    `gorm:"not null"                bson:"name"          json:"name"`
	Description   string    `                               bson:"description"   json:"description"`
	Price         string    `gorm:"not null"                bson:"price"         json:"price"`
	ImageURL      string    `                               bson:"imageUrl"      json:"imageUrl"`
	CategoryID    string    `gorm:"index;size:64"           bson:"categoryId"    json:"categoryId"`
	IsNew         bool      `gorm:"default:false"           bson:"isnew"         json:"isnew"`
	IsBestselling bool      `gorm:"default:false"           bson:"isBestselling" json:"isBestselling"`
	IsAccessory   bool      `gorm:"default:false"           bson:"isAccessories" json:"isAccessories"`
	IsPromotion   bool      `gorm:"default:false"           bson:"isPromotion"   json:"isPromotion"`
	CreatedAt     time.Time `gorm:"index"                   bson:"createdAt"     json:"createdAt"`
}

func (ProductDoc) TableName() string { return "products" }

type CategoryDoc struct {
	ID        string    `gorm:"primaryKey;size:64" bson:"_id"       json:"id"`
	Label     string    `gorm:"not null"           bson:"type"      json:"type"`
	CreatedAt time.Time `gorm:"index"              bson:"createdAt" json:"createdAt"`
}

func (CategoryDoc) TableName() string { return "categories" }

type UserDoc struct {
	ID        string    `gorm:"primaryKey;size:64" bson:"_id"       json:"uid"`
	Name      string    `                          bson:"name"      json:"name"`
	Email     string    `gorm:"index"              bson:"email"     json:"email"`
	Role      string    `gorm:"not null"           bson:"role"      json:"role"`
	CreatedAt time.Time `gorm:"index"              bson:"createdAt" json:"createdAt"`
}

func (UserDoc) TableName() string { return "users" }

type Credential struct {
	Email        string    `gorm:"primaryKey;size:320" bson:"_id"          json:"email"`
	Subject      string    `gorm:"uniqueIndex;size:64" bson:"subject"      json:"subject"`
	PasswordHash string    `gorm:"not null"            bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `                           bson:"createdAt"    json:"createdAt"`
}

func (Credential) TableName() string { return "credentials" }
