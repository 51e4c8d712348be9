package http

import "strings"

// registerForm is the raw registration submission.
type registerForm struct {
	Login    string `form:"login" validate:"required,min=3,max=32,excludesall=0x20"`
	FullName string `form:"fullName" validate:"required,max=100"`
	Phone    string `form:"phone" validate:"required,min=5,max=20"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

// normalized returns a copy with surrounding whitespace stripped from every
// field except the password, so that rules run against what would be stored.
func (f registerForm) normalized() registerForm {
	return registerForm{
		Login:    strings.TrimSpace(f.Login),
		FullName: strings.TrimSpace(f.FullName),
		Phone:    strings.TrimSpace(f.Phone),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
}

type loginForm struct {
	Login    string `form:"login" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (f loginForm) normalized() loginForm {
	return loginForm{
		Login:    strings.TrimSpace(f.Login),
		Password: f.Password,
	}
}

// registerValues echoes the non-secret registration fields back into the
// form after a failed submission. The password is never part of it.
type registerValues struct {
	Login    string
	FullName string
	Phone    string
	Email    string
}

// loginValues echoes the login field back into the login form.
type loginValues struct {
	Login string
}
