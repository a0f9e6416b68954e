package group

import (
	"context"
	"errors"
	"testing"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/database/databasetest"
	"github.com/fkhayef/splitledger/internal/user"
	"github.com/fkhayef/splitledger/pkg/logger"
)

type fixture struct {
	svc              *Service
	alice, bob, carl string
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := databasetest.New(t)
	ctx := context.Background()

	users := user.NewRepository(db)
	mk := func(name string) string {
		u, err := users.Create(ctx, &user.CreateUserRequest{Username: name, Email: name + "@example.com"})
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		return u.ID
	}

	return fixture{
		svc:   NewService(NewRepository(db), users, logger.Discard()),
		alice: mk("alice"),
		bob:   mk("bob"),
		carl:  mk("carl"),
	}
}

func TestGroupLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, f.alice, &CreateGroupRequest{
		Name:      "  Lisbon trip ",
		MemberIDs: []string{f.bob, f.alice, f.bob},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("creator is admin", func(t *testing.T) {
		if g.Name != "Lisbon trip" {
			t.Errorf("name = %q", g.Name)
		}
		if !g.IsAdmin(f.alice) {
			t.Error("creator should be admin")
		}
		if len(g.Members) != 2 {
			t.Errorf("members = %d, want 2 (duplicates dropped)", len(g.Members))
		}
		if g.Status != StatusActive {
			t.Errorf("status = %s", g.Status)
		}
	})

	t.Run("only members can read", func(t *testing.T) {
		if _, err := f.svc.Get(ctx, f.bob, g.ID); err != nil {
			t.Errorf("member Get failed: %v", err)
		}
		_, err := f.svc.Get(ctx, f.carl, g.ID)
		var ae *apperr.AuthError
		if !errors.As(err, &ae) || ae.Code != apperr.NotMember {
			t.Errorf("non-member Get = %v, want NotMember", err)
		}
		if _, err := f.svc.Get(ctx, f.alice, "missing"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("missing Get = %v, want not found", err)
		}
	})

	t.Run("any member can add and update", func(t *testing.T) {
		if _, err := f.svc.AddMember(ctx, f.bob, g.ID, &AddMemberRequest{UserID: f.carl}); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if _, err := f.svc.AddMember(ctx, f.bob, g.ID, &AddMemberRequest{UserID: f.carl}); !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("duplicate AddMember = %v, want conflict", err)
		}
		if _, err := f.svc.AddMember(ctx, f.bob, g.ID, &AddMemberRequest{UserID: "ghost"}); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("unknown user AddMember = %v, want not found", err)
		}

		name := "Porto trip"
		updated, err := f.svc.Update(ctx, f.carl, g.ID, &UpdateGroupRequest{Name: &name})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Name != name {
			t.Errorf("name = %q", updated.Name)
		}
	})

	t.Run("remove member rules", func(t *testing.T) {
		if err := f.svc.RemoveMember(ctx, f.bob, g.ID, f.carl); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("non-admin removal = %v, want forbidden", err)
		}
		if err := f.svc.RemoveMember(ctx, f.alice, g.ID, f.alice); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("creator removal = %v, want forbidden", err)
		}
		if err := f.svc.RemoveMember(ctx, f.carl, g.ID, f.carl); err != nil {
			t.Errorf("self leave failed: %v", err)
		}
		if err := f.svc.RemoveMember(ctx, f.alice, g.ID, f.bob); err != nil {
			t.Errorf("admin removal failed: %v", err)
		}

		got, err := f.svc.Get(ctx, f.alice, g.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(got.Members) != 1 || got.Members[0].UserID != f.alice {
			t.Errorf("members = %+v, want only alice", got.Members)
		}
	})

	t.Run("archive", func(t *testing.T) {
		if err := f.svc.Archive(ctx, f.alice, g.ID); err != nil {
			t.Fatalf("Archive failed: %v", err)
		}
		if err := f.svc.Archive(ctx, f.alice, g.ID); !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("second Archive = %v, want conflict", err)
		}
		if _, err := f.svc.AddMember(ctx, f.alice, g.ID, &AddMemberRequest{UserID: f.bob}); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("AddMember on archived = %v, want forbidden", err)
		}

		got, _ := f.svc.Get(ctx, f.alice, g.ID)
		if got.IsActive() {
			t.Error("group should be archived")
		}
	})
}

func TestArchiveRequiresAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, f.alice, &CreateGroupRequest{Name: "Flat", MemberIDs: []string{f.bob}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := f.svc.Archive(ctx, f.bob, g.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member Archive = %v, want forbidden", err)
	}
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}

	for _, req := range []CreateGroupRequest{
		{Name: "   "},
		{Name: string(long)},
	} {
		if _, err := f.svc.Create(ctx, f.alice, &req); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Create(%q) = %v, want validation error", req.Name, err)
		}
	}

	if _, err := f.svc.Create(ctx, f.alice, &CreateGroupRequest{Name: "x", MemberIDs: []string{"ghost"}}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown member = %v, want not found", err)
	}
}
