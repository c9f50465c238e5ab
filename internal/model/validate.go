package model

import (
	"fmt"
	"strings"
)

// バリデーションメッセージ。UIがそのまま表示するため文言を固定する。
const (
	msgNameRequired  = "Name is required"
	msgPhoneTooShort = "Phone number must be at least 10 digits"
)

// ValidateInsertDonor はInsertDonorの入力ルールを検証する。
// 最初の違反で打ち切らず、違反したフィールドすべてを1つのAPIErrorにまとめて返す。
// 正規化（トリム・整形・大文字小文字変換）は一切行わない。
// 違反がない場合はnilを返す。
func ValidateInsertDonor(in InsertDonor) *APIError {
	var violations []string

	if in.Name == "" {
		violations = append(violations, msgNameRequired)
	}
	if !in.BloodGroup.IsValid() {
		violations = append(violations, bloodGroupViolation())
	}
	if len(in.Phone) < 10 {
		violations = append(violations, msgPhoneTooShort)
	}

	if len(violations) == 0 {
		return nil
	}
	return NewValidationError(violations)
}

// bloodGroupViolation は血液型違反メッセージを生成する。
// 許可される8種のコードをメッセージに列挙する。
func bloodGroupViolation() string {
	codes := make([]string, len(BloodGroups))
	for i, bg := range BloodGroups {
		codes[i] = string(bg)
	}
	return fmt.Sprintf("Blood group must be one of %s", strings.Join(codes, ", "))
}
