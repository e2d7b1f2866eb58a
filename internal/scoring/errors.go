package scoring

import (
	"fmt"
	"strings"
)

// UnknownCategoryError is returned when the input holds a key that is neither a rubric
// category nor the summary comment.
type UnknownCategoryError struct {
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown scoring category %q", e.Category)
}

// EmptyInputError is returned when no scorable category is present.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "no scoring categories present"
}

// MissingCategoryError is returned in strict mode when rubric categories are absent.
type MissingCategoryError struct {
	Categories []Category
}

func (e *MissingCategoryError) Error() string {
	names := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		names = append(names, string(c))
	}
	return fmt.Sprintf("missing scoring categories: %s", strings.Join(names, ", "))
}

// InvalidScoreError is returned when a category value is not a number in [0, 100].
type InvalidScoreError struct {
	Category string
	Value    any
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("category %q has an invalid score: %v", e.Category, e.Value)
}
