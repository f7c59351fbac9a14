//go:build integration

package bookings

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"edusphere/internal/database"
	"edusphere/internal/sessions"
)

func startPostgres(t *testing.T) database.Service {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("edusphere_test"),
		tcpostgres.WithUsername("edusphere"),
		tcpostgres.WithPassword("edusphere"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(connStr), "migrations failed")

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return database.NewWithDB(db)
}

func seedUser(t *testing.T, db database.Service, email, role string) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO users (email, name, role) VALUES ($1, $2, $3)`, email, email, role)
	require.NoError(t, err)
}

// Two requests racing on the same (session, student) pair must resolve to
// exactly one booking row; the loser gets the duplicate error.
func TestConcurrentBookingSingleWinner(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	seedUser(t, db, "tutor@example.com", "tutor")
	seedUser(t, db, "student@example.com", "student")

	sessionRepo := sessions.NewRepository(db)
	session, err := sessionRepo.Create(ctx, "tutor@example.com", sessions.CreateSessionRequest{
		Title: "Calculus crash course",
		Price: 25,
	})
	require.NoError(t, err)

	_, err = sessionRepo.UpdateStatus(ctx, session.ID, sessions.StatusPending, sessions.StatusApproved)
	require.NoError(t, err)

	repo := NewRepository(db)

	const attempts = 10
	results := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)

	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := repo.Create(ctx, session.ID, "student@example.com")
			results <- err
		}()
	}
	start.Done()

	var wins, duplicates int
	for i := 0; i < attempts; i++ {
		err := <-results
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyBooked):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	require.Equal(t, 1, wins, "exactly one request may win")
	require.Equal(t, attempts-1, duplicates)

	var count int
	err = db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE session_id = $1 AND student_email = $2`,
		session.ID, "student@example.com").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count, "exactly one booking row may exist")
}

// Full path: a pending session cannot be booked, an approved one can, and a
// second booking by the same student is rejected.
func TestApproveThenBook(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	seedUser(t, db, "tutor@example.com", "tutor")
	seedUser(t, db, "student@example.com", "student")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessionSvc := sessions.NewService(sessions.NewRepository(db), nil, nil, logger)
	bookingSvc := NewService(NewRepository(db), sessionSvc, nil, logger)

	session, err := sessionSvc.Create(ctx, "tutor@example.com", sessions.CreateSessionRequest{
		Title: "Geometry basics",
		Price: 15,
	})
	require.NoError(t, err)
	require.Equal(t, sessions.StatusPending, session.Status)

	_, err = bookingSvc.Book(ctx, "student@example.com", session.ID)
	require.ErrorIs(t, err, ErrSessionNotBookable)

	approved, err := sessionSvc.SetStatus(ctx, session.ID, sessions.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, sessions.StatusApproved, approved.Status)

	booking, err := bookingSvc.Book(ctx, "student@example.com", session.ID)
	require.NoError(t, err)
	require.Equal(t, session.ID, booking.SessionID)

	_, err = bookingSvc.Book(ctx, "student@example.com", session.ID)
	require.ErrorIs(t, err, ErrAlreadyBooked)

	mine, err := bookingSvc.ListForStudent(ctx, "student@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Geometry basics", mine[0].SessionTitle)
}
