// Package services contains the application services used by the CLI.
// This file defines the authentication service: register, login, logout and
// access to the stored bearer credential.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/storysync/internal/client/client"
	"github.com/dmitrijs2005/storysync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storysync/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Token also makes AuthService a credential provider for the notification
// gateway; it returns "" when nobody is logged in.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context) error
	Token(ctx context.Context) (string, error)
	UserName(ctx context.Context) (string, error)
	IsAuthenticated(ctx context.Context) (bool, error)
}

type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) metadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (a *authService) Register(ctx context.Context, name, email, password string) error {
	if err := a.client.Register(ctx, name, email, password); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

// Login authenticates against the server and stores the returned token and
// user name in a single transaction. It returns the user name.
func (a *authService) Login(ctx context.Context, email, password string) (string, error) {
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("login error: %w", err)
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.metadataRepo(tx)
		if err := repo.Set(ctx, metadata.KeyToken, []byte(res.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyUserName, []byte(res.Name))
	})
	if err != nil {
		return "", fmt.Errorf("credential saving error: %w", err)
	}
	return res.Name, nil
}

// Logout forgets the stored credential. Queued submissions keep their own
// credential snapshot and are not touched.
func (a *authService) Logout(ctx context.Context) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.metadataRepo(tx)
		if err := repo.Delete(ctx, metadata.KeyToken); err != nil {
			return err
		}
		return repo.Delete(ctx, metadata.KeyUserName)
	})
}

func (a *authService) Token(ctx context.Context) (string, error) {
	return metadata.GetString(ctx, a.metadataRepo(a.db), metadata.KeyToken)
}

func (a *authService) UserName(ctx context.Context) (string, error) {
	return metadata.GetString(ctx, a.metadataRepo(a.db), metadata.KeyUserName)
}

func (a *authService) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}
