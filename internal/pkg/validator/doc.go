// Package validator checks request and template structs before they reach
// the usecase layer.
//
// The V10Validator wraps go-playground/validator v10 with English messages,
// registers the "slug" rule used for template ids, and keys every failure by
// the snake_case form of the offending field.
package validator
