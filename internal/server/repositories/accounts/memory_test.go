package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkotenko/authflow/internal/common"
	"github.com/dkotenko/authflow/internal/server/models"
)

func TestMemoryCreateAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	code := "123456"
	expiry := time.Now().Add(10 * time.Minute)
	created, err := repo.Create(ctx, &models.Account{
		Email:     "a@x.com",
		FirstName: "Ann",
		OtpCode:   &code,
		OtpExpiry: &expiry,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.ID == "" || created.Status != models.StatusPending {
		t.Fatalf("Create did not fill defaults: %+v", created)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("Create did not set timestamps: %+v", created)
	}

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("FindByEmail returned wrong account: %+v", byEmail)
	}

	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if byID.Email != "a@x.com" || *byID.OtpCode != code {
		t.Fatalf("FindByID returned wrong account: %+v", byID)
	}
}

func TestMemoryFind_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.FindByEmail(ctx, "missing@x.com"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("FindByEmail: expected common.ErrNotFound, got %v", err)
	}
	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("FindByID: expected common.ErrNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, "missing", models.AccountPatch{}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("Update: expected common.ErrNotFound, got %v", err)
	}
}

func TestMemoryUpdate_AppliesPatch(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	code := "123456"
	expiry := time.Now().Add(10 * time.Minute)
	created, err := repo.Create(ctx, &models.Account{
		Email:     "a@x.com",
		OtpCode:   &code,
		OtpExpiry: &expiry,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	verified := models.StatusVerified
	updated, err := repo.Update(ctx, created.ID, models.AccountPatch{
		Status:   &verified,
		ClearOtp: true,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Status != models.StatusVerified {
		t.Fatalf("status not updated: %+v", updated)
	}
	if updated.OtpCode != nil || updated.OtpExpiry != nil {
		t.Fatalf("OTP fields not cleared: %+v", updated)
	}

	reread, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if reread.Status != models.StatusVerified || reread.OtpCode != nil {
		t.Fatalf("update not persisted: %+v", reread)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	code := "123456"
	expiry := time.Now().Add(10 * time.Minute)
	created, err := repo.Create(ctx, &models.Account{
		Email:     "a@x.com",
		OtpCode:   &code,
		OtpExpiry: &expiry,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Mutating a returned copy must not leak into the store.
	*created.OtpCode = "999999"
	created.Status = models.StatusCreated

	stored, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if *stored.OtpCode != "123456" || stored.Status != models.StatusPending {
		t.Fatalf("store shares state with returned copies: %+v", stored)
	}
}
