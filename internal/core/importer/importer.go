// Package importer は管理者による一括取り込みを担います。表形式の入力を
// 1 行ずつ生レコードへ変換し、名寄せエンジンに渡します。行単位の失敗は
// 記録して続行し、バッチ全体を中断しません。
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ogurasousui/codex-employee-reconcile/internal/core/employee"
	"github.com/ogurasousui/codex-employee-reconcile/internal/core/normalize"
)

// 取り込みファイルの列定義。ヘッダ行を除き、全行がこの 14 列に従います。
const (
	colDocument = iota
	colNames
	colSurnames
	colBirthDate
	colAddress
	colPhone
	colEmail
	colPosition
	colSalary
	colHireDate
	colStatus
	colEducationLevel
	colProfile
	colDepartment

	columnCount
)

// Reconciler は名寄せエンジンのうち取り込みが必要とする操作です。
type Reconciler interface {
	Reconcile(ctx context.Context, in employee.RecordInput, accountID *string) (*employee.Employee, employee.Outcome, error)
}

// RowError は行単位の失敗です。Row はヘッダ行を 1 とする行番号です。
type RowError struct {
	Row int
	Err error
}

// Summary は 1 バッチの集計結果です。
type Summary struct {
	Created int
	Merged  int
	Skipped int
	Failed  int
	Errors  []RowError
}

// Importer は CSV を読み込み、行ごとに名寄せを実行します。
type Importer struct {
	svc Reconciler
	log *slog.Logger
}

// New は Importer を生成します。log が nil の場合は既定のロガーを使用します。
func New(svc Reconciler, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{svc: svc, log: log}
}

// ImportCSV は r から全行を取り込みます。先頭行はヘッダとして読み飛ばし、
// document 列が空の行はエラーにせずスキップします。行の解析失敗やストア障害は
// Summary に記録して次の行へ進みます。行は到着順に逐次処理されるため、
// 同一 document が複数行ある場合は後の行が勝ちます。
// コンテキストが取り消された場合はそこまでの Summary と ctx.Err() を返します。
func (i *Importer) ImportCSV(ctx context.Context, r io.Reader) (*Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	summary := &Summary{}
	rowNum := 0

	for {
		if err := ctx.Err(); err != nil {
			i.logSummary(summary)
			return summary, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		rowNum++

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				summary.Failed++
				summary.Errors = append(summary.Errors, RowError{Row: rowNum, Err: err})
				i.log.Warn("row parse failed", "row", rowNum, "error", err)
				continue
			}
			i.logSummary(summary)
			return summary, fmt.Errorf("importer: read input: %w", err)
		}

		// 先頭行はヘッダ。
		if rowNum == 1 {
			continue
		}

		if normalize.Text(cell(record, colDocument)) == "" {
			summary.Skipped++
			continue
		}

		_, outcome, err := i.svc.Reconcile(ctx, rowInput(record), nil)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Row: rowNum, Err: err})
			i.log.Warn("row reconcile failed", "row", rowNum, "error", err)
			continue
		}

		switch outcome {
		case employee.OutcomeCreated:
			summary.Created++
		case employee.OutcomeMerged:
			summary.Merged++
		}
	}

	i.logSummary(summary)
	return summary, nil
}

func (i *Importer) logSummary(s *Summary) {
	i.log.Info("import finished",
		"created", s.Created,
		"merged", s.Merged,
		"skipped", s.Skipped,
		"failed", s.Failed,
	)
}

// rowInput は 1 行を名寄せ入力へ写します。不足している列は空セル扱いです。
func rowInput(record []string) employee.RecordInput {
	return employee.RecordInput{
		Document:       cell(record, colDocument),
		Email:          cell(record, colEmail),
		Names:          cellPtr(record, colNames),
		Surnames:       cellPtr(record, colSurnames),
		BirthDate:      cellPtr(record, colBirthDate),
		Address:        cellPtr(record, colAddress),
		Phone:          cellPtr(record, colPhone),
		Position:       cellPtr(record, colPosition),
		Salary:         cellPtr(record, colSalary),
		HireDate:       cellPtr(record, colHireDate),
		Status:         cellPtr(record, colStatus),
		EducationLevel: cellPtr(record, colEducationLevel),
		Profile:        cellPtr(record, colProfile),
		Department:     cellPtr(record, colDepartment),
	}
}

func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

func cellPtr(record []string, idx int) *string {
	value := cell(record, idx)
	return &value
}
