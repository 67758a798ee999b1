package service

import (
	"errors"
	"testing"

	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(repo *testutil.MockUserRepo) *UserService {
	return &UserService{
		Cfg:  &config.Config{},
		Repo: repo,
	}
}

func TestCreateUser_Success(t *testing.T) {
	repo := testutil.NewMockUserRepo(nil)
	svc := newTestUserService(repo)

	user, err := svc.CreateUser("validuser123", " Val ", "Val@Example.com", "Password1!")
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if user.Username != "validuser123" {
		t.Errorf("Username = %q, want 'validuser123'", user.Username)
	}
	if user.Name != "Val" {
		t.Errorf("Name = %q, want 'Val'", user.Name)
	}
	if user.Email != "val@example.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if user.Role != models.RoleUser {
		t.Errorf("Role = %q, want 'user'", user.Role)
	}
	if user.Auth == nil {
		t.Fatal("Auth should not be nil")
	}
	if user.Auth.AuthType != models.Standard {
		t.Errorf("AuthType = %q, want 'standard'", user.Auth.AuthType)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Auth.HashedPassword), []byte("Password1!")); err != nil {
		t.Error("Password was not correctly hashed")
	}
}

func TestCreateUser_InvalidPasswordIsClientError(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))

	_, err := svc.CreateUser("validuser123", "Val", "val@example.com", "short")
	if !errors.Is(err, ErrClient) {
		t.Fatalf("CreateUser err = %v, want ErrClient", err)
	}
}

func TestCreateUser_DuplicateUsernameIsConflict(t *testing.T) {
	repo := testutil.NewMockUserRepo(nil)
	repo.Add(&models.User{Username: "validuser123"})
	svc := newTestUserService(repo)

	_, err := svc.CreateUser("ValidUser123", "Val", "val@example.com", "Password1!")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("CreateUser err = %v, want ErrConflict", err)
	}
}

func TestCreateUser_RepoError(t *testing.T) {
	repo := testutil.NewMockUserRepo(nil)
	repo.CreateUserErr = errTest
	svc := newTestUserService(repo)

	_, err := svc.CreateUser("validuser123", "Val", "val@example.com", "Password1!")
	if !errors.Is(err, errTest) {
		t.Fatalf("CreateUser err = %v, want repo error", err)
	}
}

func TestLoginUser_Success(t *testing.T) {
	repo := testutil.NewMockUserRepo(nil)
	svc := newTestUserService(repo)

	hashedPwd, _ := bcrypt.GenerateFromPassword([]byte("Password1!"), 10)
	repo.Add(&models.User{
		Username: "validuser123",
		Auth: &models.UserAuth{
			HashedPassword: string(hashedPwd),
			AuthType:       models.Standard,
		},
	})

	loggedIn, err := svc.LoginUser("ValidUser123", "Password1!")
	if err != nil {
		t.Fatalf("LoginUser error: %v", err)
	}
	if loggedIn.Username != "validuser123" {
		t.Errorf("LoginUser username = %q", loggedIn.Username)
	}
}

func TestLoginUser_WrongPassword(t *testing.T) {
	repo := testutil.NewMockUserRepo(nil)
	svc := newTestUserService(repo)

	hashedPwd, _ := bcrypt.GenerateFromPassword([]byte("Correct1!"), 10)
	repo.Add(&models.User{
		Username: "validuser123",
		Auth: &models.UserAuth{
			HashedPassword: string(hashedPwd),
			AuthType:       models.Standard,
		},
	})

	_, err := svc.LoginUser("validuser123", "Wrong1!")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("LoginUser err = %v, want ErrUnauthorized", err)
	}
}

func TestLoginUser_UserNotFound(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))

	_, err := svc.LoginUser("nonexistent", "Password1!")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("LoginUser err = %v, want ErrUnauthorized", err)
	}
}

func TestGetUserByID_Missing(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))

	_, err := svc.GetUserByID(42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetUserByID err = %v, want ErrNotFound", err)
	}
}

func TestUpdateName(t *testing.T) {
	repo := testutil.NewMockUserRepo(nil)
	user := repo.Add(testutil.TestUser())
	svc := newTestUserService(repo)

	if err := svc.UpdateName(user, "  Chef Test "); err != nil {
		t.Fatalf("UpdateName error: %v", err)
	}
	if user.Name != "Chef Test" {
		t.Errorf("Name = %q, want 'Chef Test'", user.Name)
	}
	stored, _ := repo.GetUserByID(user.ID)
	if stored.Name != "Chef Test" {
		t.Errorf("stored Name = %q, want 'Chef Test'", stored.Name)
	}

	if err := svc.UpdateName(user, "   "); !errors.Is(err, ErrClient) {
		t.Errorf("UpdateName blank err = %v, want ErrClient", err)
	}
}

func TestValidatePassword_TooShort(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidatePassword("Ab1!"); err == nil {
		t.Error("ValidatePassword: too short should fail")
	}
}

func TestValidatePassword_NoUppercase(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidatePassword("password1!"); err == nil {
		t.Error("ValidatePassword: no uppercase should fail")
	}
}

func TestValidatePassword_NoLowercase(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidatePassword("PASSWORD1!"); err == nil {
		t.Error("ValidatePassword: no lowercase should fail")
	}
}

func TestValidatePassword_NoDigit(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidatePassword("Password!"); err == nil {
		t.Error("ValidatePassword: no digit should fail")
	}
}

func TestValidatePassword_NoSpecialChar(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidatePassword("Password1"); err == nil {
		t.Error("ValidatePassword: no special char should fail")
	}
}

func TestValidatePassword_Valid(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidatePassword("Password1!"); err != nil {
		t.Errorf("ValidatePassword: valid password should pass, got %v", err)
	}
}

func TestValidateUsername_TooShort(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidateUsername("ab"); !errors.Is(err, ErrClient) {
		t.Errorf("ValidateUsername: too short err = %v, want ErrClient", err)
	}
}

func TestValidateUsername_NonAlphanumeric(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidateUsername("user@name"); err == nil {
		t.Error("ValidateUsername: non-alphanumeric should fail")
	}
}

func TestValidateUsername_Forbidden(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidateUsername("Admin"); err == nil {
		t.Error("ValidateUsername: 'Admin' should be forbidden")
	}
}

func TestValidateUsername_AlreadyTaken(t *testing.T) {
	repo := testutil.NewMockUserRepo(nil)
	repo.Add(&models.User{Username: "existinguser"})

	svc := newTestUserService(repo)
	if err := svc.ValidateUsername("existinguser"); !errors.Is(err, ErrConflict) {
		t.Errorf("ValidateUsername: already taken err = %v, want ErrConflict", err)
	}
}

func TestValidateUsername_Valid(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidateUsername("validuser123"); err != nil {
		t.Errorf("ValidateUsername: valid username should pass, got %v", err)
	}
}

func TestValidateEmail_Invalid(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidateEmail("not-an-email"); err == nil {
		t.Error("ValidateEmail: invalid email should fail")
	}
}

func TestValidateEmail_Valid(t *testing.T) {
	svc := newTestUserService(testutil.NewMockUserRepo(nil))
	if err := svc.ValidateEmail("test@example.com"); err != nil {
		t.Errorf("ValidateEmail: valid email should pass, got %v", err)
	}
}

func TestToUserResponse(t *testing.T) {
	resp := ToUserResponse(testutil.TestUser())

	if resp.ID != "1" {
		t.Errorf("ID = %q, want '1'", resp.ID)
	}
	if resp.Username != "testuser" {
		t.Errorf("Username = %q, want 'testuser'", resp.Username)
	}
	if resp.Name != "Test User" {
		t.Errorf("Name = %q", resp.Name)
	}
	if resp.Role != models.RoleUser {
		t.Errorf("Role = %q, want 'user'", resp.Role)
	}
}

// errTest is a shared test error for convenience.
var errTest = errTestType{}

type errTestType struct{}

func (e errTestType) Error() string { return "test error" }
