package echoapi

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/grade"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
)

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token   string          `json:"token"`
		Teacher teacher.Summary `json:"teacher"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	// GradeItemRequest keeps the raw values so a malformed item is dropped instead of failing the batch.
	GradeItemRequest struct {
		StudentID json.RawMessage `json:"student_id"`
		SubjectID json.RawMessage `json:"subject_id"`
		Quarter   json.RawMessage `json:"quarter"`
		Grade     json.RawMessage `json:"grade"`
	}

	SubmitGradesRequest struct {
		Items []GradeItemRequest `json:"items"`
	}

	SubmitGradesResponse struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

// GradeItems converts the request to grade items.
// A grade that is not a number becomes NaN and an id or quarter that is not an integer becomes 0,
// both of which the engine drops.
func (sr SubmitGradesRequest) GradeItems() []grade.Item {
	items := make([]grade.Item, 0, len(sr.Items))
	for _, it := range sr.Items {
		items = append(items, grade.Item{
			StudentID: rawInt(it.StudentID),
			SubjectID: rawInt(it.SubjectID),
			Quarter:   rawInt(it.Quarter),
			Grade:     rawFloat(it.Grade),
		})
	}
	return items
}

// rawFloat reads a JSON number, or a string holding one, and returns NaN for anything else (null included).
func rawFloat(raw json.RawMessage) float64 {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return math.NaN()
	}
	f, err := num.Float64()
	if err != nil {
		return math.NaN()
	}
	return f
}

// rawInt is rawFloat restricted to integral values. Everything else is 0.
func rawInt(raw json.RawMessage) int {
	f := rawFloat(raw)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// pathID parses the positive integer path parameter name. Anything else is reported as not found.
func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

const orderingParam = "ordering"

// Ordering binds the comma separated `ordering` query param. A leading "-" orders descending.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:]
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}
