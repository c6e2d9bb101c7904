// Package validation checks request payloads and configuration structs.
//
// Struct tags go through go-playground/validator; Checker collects ad-hoc
// field checks fluently. Both report failures as an INVALID_INPUT
// errors.AppError whose "fields" detail lists every failing field.
package validation
