package authorize

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/models"
	"github.com/and07/mindsync/internal/repository/postgres"
	"github.com/and07/mindsync/internal/service/membership"
	"github.com/and07/mindsync/internal/service/profile"
	"github.com/and07/mindsync/internal/service/space"
	"github.com/and07/mindsync/internal/testutil"
)

func Test_Gate(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	type fixture struct {
		gate *Gate

		owner      models.User
		stranger   models.User
		profile    models.Profile
		memberOf   models.Space
		outsiderOf models.Space
	}

	// Two users, one profile owned by the first, two spaces: the profile is
	// a member of one and not the other
	setup := func(t *testing.T, tx pgx.Tx) fixture {
		t.Helper()

		storage := postgres.NewStorage(tx)
		profiles := profile.NewService(storage.Profile())
		spaces := space.NewService(storage)
		memberships := membership.NewService(storage.Membership(), storage.Invite(), storage.Space())

		owner, err := storage.User().GetOrCreateByEmail(t.Context(), "owner@example.com")
		require.NoError(t, err)
		stranger, err := storage.User().GetOrCreateByEmail(t.Context(), "stranger@example.com")
		require.NoError(t, err)

		p, err := profiles.Create(t.Context(), owner.UUID, "owner", "")
		require.NoError(t, err)

		memberOf, err := spaces.Create(t.Context(), p.UUID, "Joined", "")
		require.NoError(t, err)
		outsiderOf, err := storage.Space().Create(t.Context(), "Foreign", "")
		require.NoError(t, err)

		return fixture{
			gate:       NewGate(profiles, spaces, memberships),
			owner:      owner,
			stranger:   stranger,
			profile:    p,
			memberOf:   memberOf,
			outsiderOf: outsiderOf,
		}
	}

	t.Run("owned profile passes", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			got, err := f.gate.OwnedProfile(t.Context(), f.owner.UUID, f.profile.UUID)

			require.NoError(t, err)
			assert.Equal(t, f.profile.UUID, got.UUID)
		})
	})

	t.Run("unknown profile before ownership", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			_, err := f.gate.OwnedProfile(t.Context(), f.owner.UUID, uuid.New())

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrProfileNotFound)
		})
	})

	t.Run("foreign profile is not owned", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			_, err := f.gate.OwnedProfile(t.Context(), f.stranger.UUID, f.profile.UUID)

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrProfileNotOwned)
		})
	})

	t.Run("member space passes", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			p, s, err := f.gate.MemberSpace(t.Context(), f.owner.UUID, f.profile.UUID, f.memberOf.UUID)

			require.NoError(t, err)
			assert.Equal(t, f.profile.UUID, p.UUID)
			assert.Equal(t, f.memberOf.UUID, s.UUID)
		})
	})

	t.Run("ownership checked before space lookup", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			// Even with a nonexistent space the foreign profile fails first
			_, _, err := f.gate.MemberSpace(t.Context(), f.stranger.UUID, f.profile.UUID, uuid.New())

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrProfileNotOwned)
		})
	})

	t.Run("unknown space after ownership", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			_, _, err := f.gate.MemberSpace(t.Context(), f.owner.UUID, f.profile.UUID, uuid.New())

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrSpaceNotFound)
		})
	})

	t.Run("existing space without membership", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			_, _, err := f.gate.MemberSpace(t.Context(), f.owner.UUID, f.profile.UUID, f.outsiderOf.UUID)

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrNotMember)
		})
	})
}
