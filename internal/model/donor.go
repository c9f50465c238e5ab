// Package model はドメインモデルを定義する。
package model

import "time"

// Donor は登録済みの献血ドナーを表す。
// IDとAddedAtはストレージ層が作成時に付与し、以後変更されない。
type Donor struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	BloodGroup BloodGroup `json:"bloodGroup"`
	Phone      string     `json:"phone"`
	AddedAt    time.Time  `json:"addedAt"`
}

// InsertDonor は作成・更新時に呼び出し元が指定できるフィールドの集合。
// idとaddedAtはサーバー側で付与するため含まない。
type InsertDonor struct {
	Name       string     `json:"name"`
	BloodGroup BloodGroup `json:"bloodGroup"`
	Phone      string     `json:"phone"`
}

// BloodGroup はABO式・Rh式の血液型コードを表す。
type BloodGroup string

const (
	// BloodGroupAPositive はA+を示す。
	BloodGroupAPositive BloodGroup = "A+"
	// BloodGroupANegative はA-を示す。
	BloodGroupANegative BloodGroup = "A-"
	// BloodGroupBPositive はB+を示す。
	BloodGroupBPositive BloodGroup = "B+"
	// BloodGroupBNegative はB-を示す。
	BloodGroupBNegative BloodGroup = "B-"
	// BloodGroupOPositive はO+を示す。
	BloodGroupOPositive BloodGroup = "O+"
	// BloodGroupONegative はO-を示す。
	BloodGroupONegative BloodGroup = "O-"
	// BloodGroupABPositive はAB+を示す。
	BloodGroupABPositive BloodGroup = "AB+"
	// BloodGroupABNegative はAB-を示す。
	BloodGroupABNegative BloodGroup = "AB-"
)

// BloodGroups は許可される8種の血液型コードの一覧。
var BloodGroups = []BloodGroup{
	BloodGroupAPositive, BloodGroupANegative,
	BloodGroupBPositive, BloodGroupBNegative,
	BloodGroupOPositive, BloodGroupONegative,
	BloodGroupABPositive, BloodGroupABNegative,
}

// IsValid は8種の列挙値のいずれかと完全一致するかを返す。
// 大文字小文字の違いや前後の空白は許容しない。
func (bg BloodGroup) IsValid() bool {
	for _, v := range BloodGroups {
		if bg == v {
			return true
		}
	}
	return false
}
