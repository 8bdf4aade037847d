package services

import (
  "context"
  "fmt"
  "net/http"
  "strings"
  "time"
  "gorm.io/gorm"
  "golang.org/x/crypto/bcrypt"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "github.com/dkoval/shopledger-backend/internal/apierr"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/repos"
  "github.com/dkoval/shopledger-backend/internal/types"
)

type AuthService interface {
  Signup(ctx context.Context, email, password string) (*types.User, string, string, error)
  Login(ctx context.Context, email, password string) (string, string, error)
  Refresh(ctx context.Context, refreshToken string) (string, string, error)
  Logout(ctx context.Context, address uuid.UUID) error
  // VerifyAccess validates the bearer token and resolves the caller address.
  VerifyAccess(ctx context.Context, tokenString string) (uuid.UUID, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db              *gorm.DB
  log             *logger.Logger
  userRepo        repos.UserRepo
  accountRepo     repos.AccountRepo
  userTokenRepo   repos.UserTokenRepo
  jwtSecretKey    string
  accessTTL       time.Duration
  refreshTTL      time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  accountRepo repos.AccountRepo,
  userTokenRepo repos.UserTokenRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:             db,
    log:            serviceLog,
    userRepo:       userRepo,
    accountRepo:    accountRepo,
    userTokenRepo:  userTokenRepo,
    jwtSecretKey:   jwtSecretKey,
    accessTTL:      accessTTL,
    refreshTTL:     refreshTTL,
  }
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}

func (as *authService) Signup(ctx context.Context, email, password string) (*types.User, string, string, error) {
  email = strings.ToLower(strings.TrimSpace(email))
  if email == "" {
    return nil, "", "", apierr.InvalidArgument("an email is required to sign up")
  }
  if password == "" {
    return nil, "", "", apierr.InvalidArgument("a password is required to sign up")
  }

  hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
  if err != nil {
    return nil, "", "", fmt.Errorf("Failed to hash password: %w", err)
  }

  user := &types.User{
    Address:  uuid.New(),
    Email:    email,
    Password: string(hashed),
  }

  var accessToken, refreshToken string
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    exists, eErr := as.userRepo.EmailExists(ctx, tx, email)
    if eErr != nil {
      return fmt.Errorf("Failed to check user email: %w", eErr)
    }
    if exists {
      return apierr.New(http.StatusConflict, "EMAIL_IN_USE", fmt.Errorf("email is already in use"))
    }
    if _, cErr := as.userRepo.Create(ctx, tx, user); cErr != nil {
      return fmt.Errorf("Failed to create user: %w", cErr)
    }
    if _, aErr := as.accountRepo.Create(ctx, tx, &types.Account{Address: user.Address}); aErr != nil {
      return fmt.Errorf("Failed to create account: %w", aErr)
    }
    access, refresh, tErr := as.issueTokens(ctx, tx, user)
    if tErr != nil {
      return tErr
    }
    accessToken, refreshToken = access, refresh
    return nil
  }); err != nil {
    return nil, "", "", err
  }
  as.log.Info("User signed up", "address", user.Address)
  return user, accessToken, refreshToken, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
  email = strings.ToLower(strings.TrimSpace(email))
  if email == "" || password == "" {
    return "", "", apierr.InvalidArgument("email and password are required to login")
  }

  user, err := as.userRepo.GetByEmail(ctx, nil, email)
  if err != nil {
    return "", "", fmt.Errorf("Error retrieving user by email: %w", err)
  }
  if user == nil {
    return "", "", apierr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", fmt.Errorf("invalid email or password"))
  }
  if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
    return "", "", apierr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", fmt.Errorf("invalid email or password"))
  }

  var accessToken, refreshToken string
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if dErr := as.userTokenRepo.DeleteByUserAddress(ctx, tx, user.Address); dErr != nil {
      return fmt.Errorf("Failed to rotate user tokens: %w", dErr)
    }
    access, refresh, tErr := as.issueTokens(ctx, tx, user)
    if tErr != nil {
      return tErr
    }
    accessToken, refreshToken = access, refresh
    return nil
  }); err != nil {
    return "", "", err
  }
  return accessToken, refreshToken, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
  if refreshToken == "" {
    return "", "", apierr.InvalidArgument("refresh token required")
  }
  row, err := as.userTokenRepo.GetByRefreshToken(ctx, nil, refreshToken)
  if err != nil {
    return "", "", fmt.Errorf("Failed to look up refresh token: %w", err)
  }
  if row == nil || row.ExpiresAt.Before(time.Now()) {
    return "", "", apierr.New(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", fmt.Errorf("refresh token expired or unknown"))
  }
  user, err := as.userRepo.GetByAddress(ctx, nil, row.UserAddress)
  if err != nil {
    return "", "", fmt.Errorf("Failed to load user for refresh: %w", err)
  }
  if user == nil {
    return "", "", apierr.New(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", fmt.Errorf("refresh token user missing"))
  }

  var accessToken, newRefreshToken string
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if dErr := as.userTokenRepo.DeleteByUserAddress(ctx, tx, user.Address); dErr != nil {
      return fmt.Errorf("Failed to rotate user tokens: %w", dErr)
    }
    access, refresh, tErr := as.issueTokens(ctx, tx, user)
    if tErr != nil {
      return tErr
    }
    accessToken, newRefreshToken = access, refresh
    return nil
  }); err != nil {
    return "", "", err
  }
  return accessToken, newRefreshToken, nil
}

func (as *authService) Logout(ctx context.Context, address uuid.UUID) error {
  if err := as.userTokenRepo.DeleteByUserAddress(ctx, nil, address); err != nil {
    return fmt.Errorf("Failed to delete user tokens: %w", err)
  }
  return nil
}

func (as *authService) VerifyAccess(ctx context.Context, tokenString string) (uuid.UUID, error) {
  claims := &jwt.RegisteredClaims{}
  token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil || !token.Valid {
    return uuid.Nil, apierr.New(http.StatusUnauthorized, "INVALID_TOKEN", fmt.Errorf("invalid access token"))
  }
  address, err := uuid.Parse(claims.Subject)
  if err != nil {
    return uuid.Nil, apierr.New(http.StatusUnauthorized, "INVALID_TOKEN", fmt.Errorf("invalid token subject"))
  }
  row, err := as.userTokenRepo.GetByAccessToken(ctx, nil, tokenString)
  if err != nil {
    return uuid.Nil, fmt.Errorf("Failed to look up access token: %w", err)
  }
  if row == nil {
    return uuid.Nil, apierr.New(http.StatusUnauthorized, "INVALID_TOKEN", fmt.Errorf("access token revoked"))
  }
  return address, nil
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *types.User) (string, string, error) {
  now := time.Now()
  accessClaims := jwt.RegisteredClaims{
    Subject:   user.Address.String(),
    ID:        uuid.NewString(),
    IssuedAt:  jwt.NewNumericDate(now),
    ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
  }
  accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(as.jwtSecretKey))
  if err != nil {
    return "", "", fmt.Errorf("Failed to sign access token: %w", err)
  }
  refreshToken := uuid.NewString()

  row := &types.UserToken{
    ID:           uuid.New(),
    UserAddress:  user.Address,
    AccessToken:  accessToken,
    RefreshToken: refreshToken,
    ExpiresAt:    now.Add(as.refreshTTL),
  }
  if _, err := as.userTokenRepo.Create(ctx, tx, row); err != nil {
    return "", "", fmt.Errorf("Failed to persist user token: %w", err)
  }
  return accessToken, refreshToken, nil
}
