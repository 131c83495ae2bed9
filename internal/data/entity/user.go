package entity

type User struct {
	Base
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password"`
	IsAdmin      bool   `db:"is_admin"`
	IsActive     bool   `db:"is_active"`
}
