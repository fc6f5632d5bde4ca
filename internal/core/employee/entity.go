package employee

import (
	"strings"
	"time"
)

// Status は社員の就業状態を表します。
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusOnVacation Status = "on_vacation"
)

// statusKeywords は取り込みテキストと状態の対応です。部分一致・大文字小文字無視で、
// 休暇が退職系より先に評価されます。どれにも一致しない場合は StatusActive です。
var (
	vacationKeywords = []string{"vacacion", "vacation"}
	inactiveKeywords = []string{"inactiv", "retir"}
)

// ClassifyStatus は状態セルの自由記述を三値に分類します。完全一致の enum 解析ではなく
// 部分一致の分類器であり、評価順(休暇 → 退職 → 既定)を含めて取り込み元の仕様です。
func ClassifyStatus(raw string) Status {
	text := strings.ToLower(strings.TrimSpace(raw))

	for _, kw := range vacationKeywords {
		if strings.Contains(text, kw) {
			return StatusOnVacation
		}
	}

	for _, kw := range inactiveKeywords {
		if strings.Contains(text, kw) {
			return StatusInactive
		}
	}

	return StatusActive
}

// Employee は正準社員レコードです。Document が業務上の主キーであり、
// ID はストアが採番する代理キーです。AccountID は自己登録した認証アカウント
// への所有リンクで、未登録の間は nil です。
type Employee struct {
	ID             string
	Document       string
	Names          string
	Surnames       string
	BirthDate      time.Time
	Address        string
	Phone          string
	Email          string
	Position       string
	Salary         float64
	HireDate       time.Time
	Status         Status
	EducationLevel string
	Profile        string
	Department     string
	AccountID      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
