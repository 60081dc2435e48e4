package services

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"eatzone/internal/domain"
)

const minPasswordLength = 6

type account struct {
	user domain.User
	hash []byte
}

// DirectoryEntry seeds the user directory.
type DirectoryEntry struct {
	User     domain.User
	Password string
}

// DemoUsers are the accounts available out of the box.
var DemoUsers = []DirectoryEntry{
	{User: domain.User{ID: "1", Name: "Budi Santoso", Email: "budi@email.com", Role: domain.RoleBuyer}, Password: "password"},
	{User: domain.User{ID: "2", Name: "Siti Aminah", Email: "siti@email.com", Role: domain.RoleBuyer}, Password: "password"},
}

// AuthService is an in-memory user directory shared by every session.
type AuthService struct {
	mu    sync.RWMutex
	users map[string]account
	cost  int
}

func NewAuthService(seed []DirectoryEntry) (*AuthService, error) {
	a := &AuthService{
		users: make(map[string]account),
		cost:  bcrypt.MinCost,
	}
	for _, e := range seed {
		if _, err := a.add(e.User, e.Password); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *AuthService) Login(email, password string) (*domain.User, error) {
	a.mu.RLock()
	acc, ok := a.users[normalizeEmail(email)]
	a.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	u := acc.user
	return &u, nil
}

// Register validates the form in the order the buyer sees the messages:
// confirmation mismatch first, then length.
func (a *AuthService) Register(name, email, password, confirm string) (*domain.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, ErrMissingField
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	return a.add(domain.User{
		ID:    "user-" + uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Role:  domain.RoleBuyer,
	}, password)
}

func (a *AuthService) add(u domain.User, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, err
	}

	key := normalizeEmail(u.Email)
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.users[key]; exists {
		return nil, ErrEmailTaken
	}
	a.users[key] = account{user: u, hash: hash}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
