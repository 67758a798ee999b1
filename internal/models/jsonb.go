package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Ingredient is one line of a recipe's ingredient list. Measure may be empty.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Ingredients is a slice of Ingredient.
// This is a workaround for GORM to embed a slice of structs into a JSONB field.
type Ingredients []Ingredient

// Scan is a GORM hook that scans jsonb into Ingredients.
func (j *Ingredients) Scan(value interface{}) error {
	result := Ingredients{}
	if err := scanJSONB(value, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Value is a GORM hook that returns json value of Ingredients.
func (j Ingredients) Value() (driver.Value, error) {
	if j == nil {
		j = Ingredients{}
	}
	return json.Marshal(j)
}

// StringList is an ordered list of strings stored as a JSONB array. Used for
// steps, where order is the cooking sequence, and for tags.
type StringList []string

// Scan is a GORM hook that scans jsonb into a StringList.
func (j *StringList) Scan(value interface{}) error {
	result := StringList{}
	if err := scanJSONB(value, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Value is a GORM hook that returns json value of a StringList.
func (j StringList) Value() (driver.Value, error) {
	if j == nil {
		j = StringList{}
	}
	return json.Marshal(j)
}

// Rating is one user's score for a recipe.
type Rating struct {
	UserID uint `json:"user"`
	Rating int  `json:"rating"`
}

// Ratings is the per-user rating list embedded in a recipe row.
type Ratings []Rating

// Scan is a GORM hook that scans jsonb into Ratings.
func (j *Ratings) Scan(value interface{}) error {
	result := Ratings{}
	if err := scanJSONB(value, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Value is a GORM hook that returns json value of Ratings.
func (j Ratings) Value() (driver.Value, error) {
	if j == nil {
		j = Ratings{}
	}
	return json.Marshal(j)
}

// scanJSONB decodes a jsonb column. Postgres drivers hand back []byte, SQLite
// may hand back a string, and NULL leaves dst untouched.
func scanJSONB(value interface{}, dst interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONB value: unsupported type %T", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
