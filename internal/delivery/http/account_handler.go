package http

import (
	"github.com/labstack/echo/v4"

	"botdash/internal/service"
)

// AccountHandler handles trading account requests
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// List returns the user's accounts (all accounts for admins)
// GET /api/accounts?status=&type=&q=&sort=&dir=&page=&per_page=
func (h *AccountHandler) List(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	accounts, info, err := h.accounts.List(c.Request().Context(), user, service.AccountQuery{
		Status:  c.QueryParam("status"),
		Type:    c.QueryParam("type"),
		Search:  c.QueryParam("q"),
		Sort:    c.QueryParam("sort"),
		Dir:     c.QueryParam("dir"),
		Page:    queryInt(c, "page"),
		PerPage: queryInt(c, "per_page"),
	})
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch accounts", err)
	}
	return PageResponse(c, accounts, info)
}

// Tree returns the user's accounts grouped user → CSP account → trading account
// GET /api/accounts/tree
func (h *AccountHandler) Tree(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	tree, err := h.accounts.Tree(c.Request().Context(), user)
	if err != nil {
		return DomainErrorResponse(c, "Failed to build account tree", err)
	}
	return SuccessResponse(c, tree)
}

// Get returns one account
// GET /api/accounts/:id
func (h *AccountHandler) Get(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return DomainErrorResponse(c, "Invalid account id", err)
	}

	account, err := h.accounts.Get(c.Request().Context(), user, id)
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch account", err)
	}
	return SuccessResponse(c, account)
}

// Create adds an account for the current user
// POST /api/accounts
func (h *AccountHandler) Create(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	var in service.AccountInput
	if err := c.Bind(&in); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	account, err := h.accounts.Create(c.Request().Context(), user, in)
	if err != nil {
		return DomainErrorResponse(c, "Failed to create account", err)
	}
	return CreatedResponse(c, account)
}

// Update edits an account
// PUT /api/accounts/:id
func (h *AccountHandler) Update(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return DomainErrorResponse(c, "Invalid account id", err)
	}
	var in service.AccountInput
	if err := c.Bind(&in); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	account, err := h.accounts.Update(c.Request().Context(), user, id, in)
	if err != nil {
		return DomainErrorResponse(c, "Failed to update account", err)
	}
	return SuccessResponse(c, account)
}

// Delete removes an account
// DELETE /api/accounts/:id
func (h *AccountHandler) Delete(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return DomainErrorResponse(c, "Invalid account id", err)
	}

	if err := h.accounts.Delete(c.Request().Context(), user, id); err != nil {
		return DomainErrorResponse(c, "Failed to delete account", err)
	}
	return SuccessMessageResponse(c, "Account deleted", nil)
}

// AddCredential stores an API key pair; the secret is sealed and never returned
// POST /api/accounts/credentials
func (h *AccountHandler) AddCredential(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	var in service.CredentialInput
	if err := c.Bind(&in); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	cred, err := h.accounts.AddCredential(c.Request().Context(), user, in)
	if err != nil {
		return DomainErrorResponse(c, "Failed to store credential", err)
	}
	return CreatedResponse(c, cred)
}

// Credentials lists the user's stored API credentials
// GET /api/accounts/credentials
func (h *AccountHandler) Credentials(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	creds, err := h.accounts.Credentials(c.Request().Context(), user)
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch credentials", err)
	}
	return SuccessResponse(c, creds)
}
