// Package catalog loads pre-authored question files into the store.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/mathtrail/mathtrail/internal/numrange"
	"github.com/mathtrail/mathtrail/internal/progression"
	"github.com/mathtrail/mathtrail/internal/store"
)

// fileSchema constrains an import file before any row is touched.
// Arithmetic consistency (answer matches the operands) is checked
// separately; JSON Schema cannot express it.
const fileSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["operator", "grade", "operand1", "operand2", "answer"],
    "properties": {
      "operator": {"enum": ["addition", "subtraction", "multiplication", "division"]},
      "grade": {"type": "integer", "minimum": 0, "maximum": 6},
      "operand1": {"type": "integer", "minimum": 0},
      "operand2": {"type": "integer", "minimum": 0},
      "answer": {"type": "integer", "minimum": 0},
      "factType": {"type": "string"}
    },
    "additionalProperties": false
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var parsed any
		if err := json.Unmarshal([]byte(fileSchema), &parsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://catalog.json", parsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("schema://catalog.json")
	})
	return compiledSchema, compileErr
}

// Entry is one pre-authored fact as it appears in an import file.
type Entry struct {
	Operator string `json:"operator"`
	Grade    int    `json:"grade"`
	Operand1 int    `json:"operand1"`
	Operand2 int    `json:"operand2"`
	Answer   int    `json:"answer"`
	FactType string `json:"factType,omitempty"`
}

// Parse validates raw import-file bytes against the schema and the
// arithmetic consistency rules, then returns the entries. The whole file
// is rejected on the first bad entry so a partial import never happens.
func Parse(raw []byte) ([]Entry, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := getCompiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}

	for i, e := range entries {
		if err := checkEntry(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return entries, nil
}

// checkEntry rejects facts whose stored answer disagrees with the
// operands, and division facts with a zero divisor.
func checkEntry(e Entry) error {
	op, err := numrange.ParseOperation(e.Operator)
	if err != nil {
		return err
	}
	var want int
	switch op {
	case numrange.OpAddition:
		want = e.Operand1 + e.Operand2
	case numrange.OpSubtraction:
		if e.Operand2 > e.Operand1 {
			return fmt.Errorf("%d - %d goes negative", e.Operand1, e.Operand2)
		}
		want = e.Operand1 - e.Operand2
	case numrange.OpMultiplication:
		want = e.Operand1 * e.Operand2
	case numrange.OpDivision:
		if e.Operand2 == 0 {
			return fmt.Errorf("division by zero in %d / %d", e.Operand1, e.Operand2)
		}
		if e.Operand1%e.Operand2 != 0 {
			return fmt.Errorf("%d / %d does not divide evenly", e.Operand1, e.Operand2)
		}
		want = e.Operand1 / e.Operand2
	}
	if e.Answer != want {
		return fmt.Errorf("answer %d does not match %d %s %d",
			e.Answer, e.Operand1, op.Symbol(), e.Operand2)
	}
	return nil
}

// Import inserts validated entries into the catalog and returns how many
// were inserted. Callers obtain entries from Parse; Import does not
// re-validate.
func Import(ctx context.Context, repo *store.CatalogRepo, entries []Entry) (int, error) {
	for i, e := range entries {
		factType := e.FactType
		if factType == "" {
			factType = defaultFactType(e)
		}
		q := store.CatalogQuestion{
			Operator: e.Operator,
			Grade:    e.Grade,
			Operand1: e.Operand1,
			Operand2: e.Operand2,
			Answer:   e.Answer,
			FactType: factType,
		}
		if err := repo.Insert(ctx, q); err != nil {
			return i, fmt.Errorf("insert entry %d: %w", i, err)
		}
	}
	return len(entries), nil
}

// defaultFactType tags an untagged fact with the progression stage its
// second operand falls into, so stage-filtered lookups can find it.
func defaultFactType(e Entry) string {
	op, err := numrange.ParseOperation(e.Operator)
	if err != nil {
		return ""
	}
	for _, st := range progression.Stages(op) {
		if st.Band.Contains(e.Operand2) {
			return st.Name
		}
	}
	return ""
}

// Describe renders a one-line summary of an entry for import logs.
func Describe(e Entry) string {
	op, _ := numrange.ParseOperation(e.Operator)
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s %d = %d (grade %d)", e.Operand1, op.Symbol(), e.Operand2, e.Answer, e.Grade)
	return b.String()
}
