package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"simbooking/internal/db"
	"simbooking/internal/entities"
	apperrors "simbooking/internal/errors"
	"simbooking/internal/repository"
	"simbooking/internal/scheduling"
	"simbooking/internal/utils"
)

func resourceOrDefault(id string) (string, error) {
	if id == "" {
		return utils.ValidResourceIDs[0], nil
	}
	if !utils.IsValidResourceID(id) {
		return "", invalidInput("resourceId non valido")
	}
	return id, nil
}

func storeError(log *zap.Logger, what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrNotFound(what + " non trovato")
	}
	log.Error("store error", zap.String("entity", what), zap.Error(err))
	return apperrors.ErrDatabase()
}

type BlackoutService struct {
	repo repository.BlackoutRepository
	log  *zap.Logger
}

func NewBlackoutService(repo repository.BlackoutRepository, log *zap.Logger) *BlackoutService {
	return &BlackoutService{repo: repo, log: log}
}

// validateBlackout checks the date range and the optional time window, which
// must be given as a pair with end after start.
func validateBlackout(req entities.BlackoutRequest) (db.BlackoutPeriod, error) {
	resourceID, err := resourceOrDefault(req.ResourceID)
	if err != nil {
		return db.BlackoutPeriod{}, err
	}
	if req.StartDate == "" || req.EndDate == "" {
		return db.BlackoutPeriod{}, invalidInput("startDate e endDate sono obbligatori")
	}
	if !utils.IsValidDate(req.StartDate) || !utils.IsValidDate(req.EndDate) {
		return db.BlackoutPeriod{}, invalidInput("Formato date non valido. Usa YYYY-MM-DD")
	}
	if req.EndDate < req.StartDate {
		return db.BlackoutPeriod{}, invalidInput("endDate deve essere >= startDate")
	}
	start, end := emptyToNil(req.StartTime), emptyToNil(req.EndTime)
	if (start == nil) != (end == nil) {
		return db.BlackoutPeriod{}, invalidInput("startTime e endTime devono essere entrambi specificati o entrambi null")
	}
	if start != nil {
		s, err := scheduling.ParseTimeOfDay(*start)
		if err != nil {
			return db.BlackoutPeriod{}, invalidInput("Formato startTime non valido. Usa HH:mm")
		}
		e, err := scheduling.ParseTimeOfDay(*end)
		if err != nil {
			return db.BlackoutPeriod{}, invalidInput("Formato endTime non valido. Usa HH:mm")
		}
		if e <= s {
			return db.BlackoutPeriod{}, invalidInput("endTime deve essere maggiore di startTime")
		}
	}
	return db.BlackoutPeriod{
		ResourceID: resourceID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		StartTime:  start,
		EndTime:    end,
		Reason:     utils.SanitizeString(req.Reason),
	}, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func (s *BlackoutService) List(ctx context.Context, resourceID string) ([]db.BlackoutPeriod, error) {
	resourceID, err := resourceOrDefault(resourceID)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, resourceID)
	if err != nil {
		return nil, storeError(s.log, "Blackout", err)
	}
	return list, nil
}

func (s *BlackoutService) Create(ctx context.Context, req entities.BlackoutRequest) (*db.BlackoutPeriod, error) {
	b, err := validateBlackout(req)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, storeError(s.log, "Blackout", err)
	}
	s.log.Info("blackout created", zap.String("blackout_id", created.ID),
		zap.String("from", created.StartDate), zap.String("to", created.EndDate))
	return created, nil
}

func (s *BlackoutService) Update(ctx context.Context, id string, req entities.BlackoutRequest) (*db.BlackoutPeriod, error) {
	if !utils.IsValidUUID(id) {
		return nil, apperrors.ErrBadRequest(apperrors.CodeInvalidID, "ID blackout non valido")
	}
	b, err := validateBlackout(req)
	if err != nil {
		return nil, err
	}
	b.ID = id
	updated, err := s.repo.Update(ctx, b)
	if err != nil {
		return nil, storeError(s.log, "Blackout", err)
	}
	return updated, nil
}

func (s *BlackoutService) Delete(ctx context.Context, id string) error {
	if !utils.IsValidUUID(id) {
		return apperrors.ErrBadRequest(apperrors.CodeInvalidID, "ID blackout non valido")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(s.log, "Blackout", err)
	}
	s.log.Info("blackout deleted", zap.String("blackout_id", id))
	return nil
}

type WeeklyHoursService struct {
	repo repository.WeeklyHoursRepository
	grid scheduling.Grid
	log  *zap.Logger
}

func NewWeeklyHoursService(repo repository.WeeklyHoursRepository, grid scheduling.Grid, log *zap.Logger) *WeeklyHoursService {
	return &WeeklyHoursService{repo: repo, grid: grid, log: log}
}

// validateHours requires a close time after the open time on open days.
// Closed days without times keep the grid's default window.
func (s *WeeklyHoursService) validateHours(req entities.WeeklyHoursRequest) (db.WeeklyHours, error) {
	h := db.WeeklyHours{OpenTime: req.OpenTime, CloseTime: req.CloseTime, IsClosed: req.IsClosed}
	if req.IsClosed && (req.OpenTime == "" || req.CloseTime == "") {
		h.OpenTime, h.CloseTime = s.grid.DefaultOpen.String(), s.grid.DefaultClose.String()
		return h, nil
	}
	if req.OpenTime == "" || req.CloseTime == "" {
		return h, invalidInput("openTime e closeTime sono obbligatori quando isClosed è false")
	}
	open, err := scheduling.ParseTimeOfDay(req.OpenTime)
	if err != nil {
		return h, invalidInput("Formato openTime non valido. Usa HH:mm")
	}
	closeAt, err := scheduling.ParseTimeOfDay(req.CloseTime)
	if err != nil {
		return h, invalidInput("Formato closeTime non valido. Usa HH:mm")
	}
	if closeAt <= open {
		return h, invalidInput("closeTime deve essere maggiore di openTime")
	}
	return h, nil
}

func (s *WeeklyHoursService) List(ctx context.Context, resourceID string) ([]db.WeeklyHours, error) {
	resourceID, err := resourceOrDefault(resourceID)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, resourceID)
	if err != nil {
		return nil, storeError(s.log, "Orario", err)
	}
	return list, nil
}

func (s *WeeklyHoursService) Save(ctx context.Context, req entities.WeeklyHoursRequest) (*db.WeeklyHours, error) {
	resourceID, err := resourceOrDefault(req.ResourceID)
	if err != nil {
		return nil, err
	}
	if req.DayOfWeek == nil {
		return nil, invalidInput("dayOfWeek è obbligatorio")
	}
	if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		return nil, invalidInput("dayOfWeek deve essere un numero tra 0 (domenica) e 6 (sabato)")
	}
	h, err := s.validateHours(req)
	if err != nil {
		return nil, err
	}
	h.ResourceID = resourceID
	h.DayOfWeek = *req.DayOfWeek
	saved, err := s.repo.Upsert(ctx, h)
	if err != nil {
		return nil, storeError(s.log, "Orario", err)
	}
	s.log.Info("weekly hours saved", zap.Int("day_of_week", saved.DayOfWeek), zap.Bool("closed", saved.IsClosed))
	return saved, nil
}

func (s *WeeklyHoursService) Update(ctx context.Context, id string, req entities.WeeklyHoursRequest) (*db.WeeklyHours, error) {
	if !utils.IsValidUUID(id) {
		return nil, apperrors.ErrBadRequest(apperrors.CodeInvalidID, "ID weekly hours non valido")
	}
	h, err := s.validateHours(req)
	if err != nil {
		return nil, err
	}
	h.ID = id
	saved, err := s.repo.Update(ctx, h)
	if err != nil {
		return nil, storeError(s.log, "Orario", err)
	}
	return saved, nil
}

func (s *WeeklyHoursService) Delete(ctx context.Context, id string) error {
	if !utils.IsValidUUID(id) {
		return apperrors.ErrBadRequest(apperrors.CodeInvalidID, "ID weekly hours non valido")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(s.log, "Orario", err)
	}
	return nil
}
