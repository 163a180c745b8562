package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	ErrMissingUserID    = goerr.New("user ID is required")
	ErrMissingUserEmail = goerr.New("user email is required")
)
