package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"polyglot_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(client *fakeDynamoClient) *AuthService {
	dynamo := &DynamoService{Client: client}
	return &AuthService{
		Dynamo:    dynamo,
		Profiles:  &ProfileService{Dynamo: dynamo},
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
}

func TestSignUpCreatesAccountAndProfile(t *testing.T) {
	var puts []*dynamodb.PutItemInput
	client := &fakeDynamoClient{
		getItem: func(input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{}, nil
		},
		putItem: func(input *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			puts = append(puts, input)
			return &dynamodb.PutItemOutput{}, nil
		},
	}
	service := newAuthService(client)

	profile, token, err := service.SignUp(context.Background(), "ana@example.com", "secret123", "Ana", "Silva", "pt")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	if profile.Email != "ana@example.com" || profile.Language != "pt" {
		t.Errorf("unexpected profile %+v", profile)
	}
	if profile.EmailVerified {
		t.Error("new profiles must start unverified")
	}

	if len(puts) != 2 {
		t.Fatalf("expected account and profile writes, got %d", len(puts))
	}
	if *puts[0].TableName != models.AccountsTable || *puts[1].TableName != models.ProfilesTable {
		t.Errorf("unexpected write order: %s, %s", *puts[0].TableName, *puts[1].TableName)
	}

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("minted token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["user_id"] != profile.UserID {
		t.Errorf("token user_id %v does not match profile %s", claims["user_id"], profile.UserID)
	}
}

func TestSignUpEmailTaken(t *testing.T) {
	existing := mustItem(t, models.Account{Email: "ana@example.com", UserID: "user-1"})
	client := &fakeDynamoClient{
		getItem: func(input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{Item: existing}, nil
		},
	}
	service := newAuthService(client)

	_, _, err := service.SignUp(context.Background(), "ana@example.com", "secret123", "Ana", "Silva", "pt")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	account := mustItem(t, models.Account{
		Email:        "ana@example.com",
		UserID:       "user-1",
		PasswordHash: string(hash),
	})
	client := &fakeDynamoClient{
		getItem: func(input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{Item: account}, nil
		},
	}
	service := newAuthService(client)

	_, _, err = service.SignIn(context.Background(), "ana@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInUnknownEmail(t *testing.T) {
	client := &fakeDynamoClient{
		getItem: func(input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{}, nil
		},
	}
	service := newAuthService(client)

	_, _, err := service.SignIn(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInUnverifiedEmailRejected(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	account := mustItem(t, models.Account{
		Email:        "ana@example.com",
		UserID:       "user-1",
		PasswordHash: string(hash),
	})
	unverified := mustItem(t, models.Profile{UserID: "user-1", Email: "ana@example.com", EmailVerified: false})

	client := &fakeDynamoClient{
		getItem: func(input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			if *input.TableName == models.AccountsTable {
				return &dynamodb.GetItemOutput{Item: account}, nil
			}
			return &dynamodb.GetItemOutput{Item: unverified}, nil
		},
	}
	service := newAuthService(client)

	_, _, err = service.SignIn(context.Background(), "ana@example.com", "correct-password")
	if !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
}

func TestVerifyEmailMarksProfile(t *testing.T) {
	var update *dynamodb.UpdateItemInput
	client := &fakeDynamoClient{
		updateItem: func(input *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			update = input
			return &dynamodb.UpdateItemOutput{}, nil
		},
	}
	service := newAuthService(client)

	token, err := service.MintVerifyToken("user-1")
	if err != nil {
		t.Fatalf("MintVerifyToken failed: %v", err)
	}

	userID, err := service.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("expected user-1, got %q", userID)
	}
	if update == nil || *update.TableName != models.ProfilesTable {
		t.Fatal("expected a profile update")
	}
	if key := extractS(update.Key["userId"]); key != "user-1" {
		t.Errorf("update should target user-1, got %q", key)
	}
}

func TestVerifyEmailRejectsSessionToken(t *testing.T) {
	var updates int
	client := &fakeDynamoClient{
		updateItem: func(input *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			updates++
			return &dynamodb.UpdateItemOutput{}, nil
		},
	}
	service := newAuthService(client)

	sessionToken, err := service.MintToken("user-1")
	if err != nil {
		t.Fatalf("MintToken failed: %v", err)
	}

	if _, err := service.VerifyEmail(context.Background(), sessionToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for a session token, got %v", err)
	}
	if updates != 0 {
		t.Errorf("no profile update expected, got %d", updates)
	}
}

func TestSignInSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	account := mustItem(t, models.Account{
		Email:        "ana@example.com",
		UserID:       "user-1",
		PasswordHash: string(hash),
	})
	profileItem := mustItem(t, models.Profile{UserID: "user-1", FirstName: "Ana", Email: "ana@example.com", EmailVerified: true})

	client := &fakeDynamoClient{
		getItem: func(input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			if *input.TableName == models.AccountsTable {
				return &dynamodb.GetItemOutput{Item: account}, nil
			}
			return &dynamodb.GetItemOutput{Item: profileItem}, nil
		},
	}
	service := newAuthService(client)

	profile, token, err := service.SignIn(context.Background(), "ana@example.com", "correct-password")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if profile.UserID != "user-1" {
		t.Errorf("unexpected profile %+v", profile)
	}
	if token == "" {
		t.Error("expected a session token")
	}
}
