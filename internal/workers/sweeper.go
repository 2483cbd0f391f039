package workers

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"authbase/internal/platform/email"
	"authbase/internal/platform/repositories"
)

const unverifiedRetention = 7 * 24 * time.Hour

// Sweeper removes accounts that never verified their email and warns the
// ones approaching the cutoff. Runs are idempotent: a row is only ever in
// one reminder window, and deletes key off the same cutoff every pass.
type Sweeper struct {
	userRepo *repositories.UserRepository
	devRepo  *repositories.DeveloperRepository
	mailer   email.Sender
}

func NewSweeper(userRepo *repositories.UserRepository, devRepo *repositories.DeveloperRepository, mailer email.Sender) *Sweeper {
	return &Sweeper{userRepo: userRepo, devRepo: devRepo, mailer: mailer}
}

// DeleteUnverified purges users and developers whose accounts stayed
// unverified past the retention window.
func (s *Sweeper) DeleteUnverified() {
	cutoff := time.Now().Add(-unverifiedRetention).Unix()

	if n, err := s.userRepo.DeleteUnverifiedBefore(cutoff); err != nil {
		log.Error().Err(err).Msg("sweeper: failed to delete unverified users")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("sweeper: deleted unverified users")
	}

	if n, err := s.devRepo.DeleteUnverifiedBefore(cutoff); err != nil {
		log.Error().Err(err).Msg("sweeper: failed to delete unverified developers")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("sweeper: deleted unverified developers")
	}
}

// SendReminders mails unverified accounts sitting in the day-3 and day-6
// windows. Window bounds are half-open so a row never lands in both.
func (s *Sweeper) SendReminders() {
	now := time.Now()
	s.remindWindow(now, 3*24*time.Hour, 4*24*time.Hour, "4 days")
	s.remindWindow(now, 6*24*time.Hour, 7*24*time.Hour, "1 day")
}

func (s *Sweeper) remindWindow(now time.Time, olderThan, youngerThan time.Duration, remaining string) {
	// Rows created within [now-youngerThan, now-olderThan) fall in this window.
	from := now.Add(-youngerThan).Unix()
	to := now.Add(-olderThan).Unix()

	subject := "Email Verification Reminder"

	users, err := s.userRepo.ListUnverifiedBetween(from, to)
	if err != nil {
		log.Error().Err(err).Msg("sweeper: failed to list unverified users")
	} else {
		for _, u := range users {
			body := fmt.Sprintf("Hello %s,\n\nYour account is not verified yet. You have %s left to verify your email before the account is deleted.\n\nRegards,\nAuthbase Team", u.FirstName, remaining)
			if err := s.mailer.Send(u.Email, subject, body); err != nil {
				log.Warn().Err(err).Str("email", u.Email).Msg("sweeper: reminder mail failed")
			}
		}
	}

	devs, err := s.devRepo.ListUnverifiedBetween(from, to)
	if err != nil {
		log.Error().Err(err).Msg("sweeper: failed to list unverified developers")
		return
	}
	for _, d := range devs {
		body := fmt.Sprintf("Hello %s,\n\nYour account is not verified yet. You have %s left to verify your email before the account is deleted.\n\nRegards,\nAuthbase Team", d.Name, remaining)
		if err := s.mailer.Send(d.Email, subject, body); err != nil {
			log.Warn().Err(err).Str("email", d.Email).Msg("sweeper: reminder mail failed")
		}
	}
}
