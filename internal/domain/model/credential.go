//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "errors"

// SubjectKind distinguishes which document table a credential belongs to.
type SubjectKind string

const (
	SubjectCustomer SubjectKind = "customer"
	SubjectUser     SubjectKind = "user"
)

// ErrCredentialNotFound is returned by credential stores when no password is set for a subject.
var ErrCredentialNotFound = errors.New("credential not found")

// Credential is a stored password hash. It never leaves the service layer.
type Credential struct {
	SubjectID    string      `db:"subject_id"`
	SubjectKind  SubjectKind `db:"subject_kind"`
	PasswordHash string      `db:"password_hash"`
}
