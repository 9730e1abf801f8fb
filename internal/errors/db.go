package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// "Key (email)=(a@b.c) already exists."
	reKeyColumn = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// "... is still referenced from table "invoices"."
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([a-z_]+)"?`)
)

// tableNouns names each document table the way clients see it.
var tableNouns = map[string]string{
	"customers":       "customer",
	"users":           "user",
	"dogs":            "dog",
	"categories":      "category",
	"products":        "product",
	"clinic_services": "service",
	"invoices":        "invoice",
	"diagnoses":       "diagnose",
	"credentials":     "credential",
}

// MapDBError translates driver and context errors into AppErrors.
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		e := Wrap(pgErr, ErrCodeConflict, uniqueMessage(pgErr))
		e.Field = violatedColumn(pgErr)
		return e
	case pgerrcode.ForeignKeyViolation:
		return Wrap(pgErr, ErrCodeForeignKey, foreignKeyMessage(pgErr))
	case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
		e := Wrap(pgErr, ErrCodeValidation, "This field has an invalid value.")
		e.Field = pgErr.ColumnName
		if e.Field == "" {
			e.Message = "Invalid data. Please check your input."
		}
		return e
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
	}
}

// violatedColumn prefers the server-reported column, then the detail text,
// then the middle segment of a "<table>_<column>_key" constraint name.
func violatedColumn(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyColumn.FindStringSubmatch(pgErr.Detail); len(m) == 2 && !strings.Contains(m[1], ",") {
		return m[1]
	}
	table, rest, ok := strings.Cut(pgErr.ConstraintName, "_")
	if !ok || tableNouns[table] == "" {
		return ""
	}
	column, ok := strings.CutSuffix(rest, "_key")
	if !ok || strings.Contains(column, "_") {
		return ""
	}
	return column
}

func uniqueMessage(pgErr *pgconn.PgError) string {
	switch violatedColumn(pgErr) {
	case "email":
		return "An account with this email already exists."
	case "number":
		return "This document number is already taken."
	default:
		return "This value already exists. Please choose a different one."
	}
}

// foreignKeyMessage distinguishes deleting a referenced customer from
// writing a record whose customer is missing. Every foreign key points at customers.
func foreignKeyMessage(pgErr *pgconn.PgError) string {
	if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		if child := nounFor(m[1]); child != "" {
			return "Cannot delete customer because it has " + plural(child) + "."
		}
		return "Cannot delete customer because it is in use."
	}
	if strings.Contains(pgErr.Detail, "is not present in table") {
		return "The referenced customer does not exist."
	}
	return "Cannot complete operation because this item is in use."
}

func nounFor(table string) string {
	return tableNouns[strings.ToLower(strings.TrimSpace(table))]
}

func plural(noun string) string {
	switch {
	case strings.HasSuffix(noun, "y"):
		return strings.TrimSuffix(noun, "y") + "ies"
	case strings.HasSuffix(noun, "se"):
		return strings.TrimSuffix(noun, "e") + "es"
	default:
		return noun + "s"
	}
}
