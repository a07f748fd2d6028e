package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "dealdesk_access_token"
)
