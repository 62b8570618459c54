package user

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"healthcare-booking/logger"
	"healthcare-booking/models/account"
	"healthcare-booking/services/storage"
	userTypes "healthcare-booking/types/user"
)

type AccountStore interface {
	FindByID(ctx context.Context, id uint) (*account.Account, error)
	Update(ctx context.Context, acct *account.Account, columns ...string) error
}

// PasswordVerifier confirms an account's current password.
type PasswordVerifier interface {
	VerifyPassword(acct *account.Account, password string) error
}

// ActivityStore counts the appointments and reviews an account takes part in.
type ActivityStore interface {
	AppointmentCounts(ctx context.Context, acct *account.Account) (map[string]int64, error)
	UpcomingCount(ctx context.Context, acct *account.Account, after time.Time) (int64, error)
	ReviewsWritten(ctx context.Context, patientID uint) (int64, error)
}

type Service struct {
	accounts  AccountStore
	passwords PasswordVerifier
	activity  ActivityStore
	uploader  storage.Uploader
	now       func() time.Time
}

func NewService(accounts AccountStore, passwords PasswordVerifier, activity ActivityStore, uploader storage.Uploader) *Service {
	if uploader == nil {
		uploader = storage.Disabled{}
	}
	return &Service{accounts: accounts, passwords: passwords, activity: activity, uploader: uploader, now: time.Now}
}

func (s *Service) UpdateProfile(ctx context.Context, id uint, req userTypes.UpdateProfileRequest) (*account.Account, error) {
	acct, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var columns []string
	if req.Name != nil {
		acct.Name = strings.TrimSpace(*req.Name)
		columns = append(columns, "name")
	}
	if req.Phone != nil {
		acct.Phone = strings.TrimSpace(*req.Phone)
		columns = append(columns, "phone")
	}
	if req.Address != nil {
		acct.Address = *req.Address
		columns = append(columns, account.AddressColumns...)
	}
	if acct.IsPatient() {
		if req.Gender != nil {
			acct.Gender = *req.Gender
			columns = append(columns, "gender")
		}
		if req.EmergencyContact != nil {
			acct.EmergencyContact = *req.EmergencyContact
			columns = append(columns, account.EmergencyContactColumns...)
		}
		if req.DateOfBirth != nil {
			columns = append(columns, "date_of_birth")
			acct.DateOfBirth = nil
			if *req.DateOfBirth != "" {
				dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
				if err != nil {
					return nil, fmt.Errorf("date_of_birth must be YYYY-MM-DD: %w", err)
				}
				acct.DateOfBirth = &dob
			}
		}
	}
	if err := s.accounts.Update(ctx, acct, columns...); err != nil {
		return nil, err
	}
	return acct, nil
}

func (s *Service) UploadProfilePicture(ctx context.Context, id uint, contentType string, body io.Reader) (*account.Account, error) {
	acct, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.uploader.UploadImage(ctx, "profiles", contentType, body)
	if err != nil {
		return nil, err
	}
	acct.ProfilePicture = url
	if err := s.accounts.Update(ctx, acct, "profile_picture"); err != nil {
		return nil, err
	}
	return acct, nil
}

func (s *Service) Stats(ctx context.Context, id uint) (*userTypes.StatsResponse, error) {
	acct, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.activity.AppointmentCounts(ctx, acct)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.activity.UpcomingCount(ctx, acct, s.now())
	if err != nil {
		return nil, err
	}
	stats := &userTypes.StatsResponse{AppointmentsByStatus: byStatus, UpcomingAppointments: upcoming}
	for _, n := range byStatus {
		stats.TotalAppointments += n
	}
	if acct.IsPatient() {
		if stats.ReviewsWritten, err = s.activity.ReviewsWritten(ctx, acct.ID); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// Delete deactivates the account once the password is confirmed; rows are kept for history.
func (s *Service) Delete(ctx context.Context, id uint, password string) error {
	acct, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.passwords.VerifyPassword(acct, password); err != nil {
		return err
	}
	acct.IsActive = false
	if err := s.accounts.Update(ctx, acct, "is_active"); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Account %d deactivated by its owner", acct.ID))
	return nil
}
