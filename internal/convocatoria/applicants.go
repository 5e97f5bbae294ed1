package convocatoria

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/convocatorias/internal/logger"
)

func normalizeApplicantInput(in ApplicantInput) (ApplicantInput, error) {
	in.Document = strings.TrimSpace(in.Document)
	in.FullName = strings.TrimSpace(in.FullName)

	if in.Document == "" {
		return in, fmt.Errorf("document is required: %w", ErrInvalidInput)
	}
	if in.FullName == "" {
		return in, fmt.Errorf("full name is required: %w", ErrInvalidInput)
	}
	if in.BirthDate.IsZero() {
		return in, fmt.Errorf("birth date is required: %w", ErrInvalidInput)
	}
	return in, nil
}

func (d *Data) checkDocument(postingID, document, exceptID string) error {
	for _, a := range d.applicantsOf(postingID) {
		if a.ID != exceptID && a.Document == document {
			return fmt.Errorf("document %s is already registered in posting %s: %w", document, postingID, ErrConflict)
		}
	}
	return nil
}

// AddApplicant registers an applicant in a posting. Documents are unique per
// posting.
func (s *Service) AddApplicant(ctx context.Context, postingID string, in ApplicantInput) (*Applicant, error) {
	in, err := normalizeApplicantInput(in)
	if err != nil {
		return nil, err
	}

	var created *Applicant
	err = s.update(ctx, func(d *Data) error {
		if _, err := d.posting(postingID); err != nil {
			return err
		}
		if err := d.checkDocument(postingID, in.Document, ""); err != nil {
			return err
		}

		created = &Applicant{
			ID:        s.newID(),
			PostingID: postingID,
			Document:  in.Document,
			FullName:  in.FullName,
			BirthDate: in.BirthDate,
			CreatedAt: s.now(),
		}
		d.Applicants = append(d.Applicants, created)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding applicant: %w", err)
	}

	s.logger.Info("applicant added",
		append(logger.PostingFields(postingID, ""), logger.ApplicantFields(created.ID, created.Document)...)...,
	)
	return created, nil
}

// UpdateApplicant replaces the personal data of an applicant.
func (s *Service) UpdateApplicant(ctx context.Context, id string, in ApplicantInput) (*Applicant, error) {
	in, err := normalizeApplicantInput(in)
	if err != nil {
		return nil, err
	}

	var updated *Applicant
	err = s.update(ctx, func(d *Data) error {
		a, err := d.applicant(id)
		if err != nil {
			return err
		}
		if err := d.checkDocument(a.PostingID, in.Document, id); err != nil {
			return err
		}

		a.Document = in.Document
		a.FullName = in.FullName
		a.BirthDate = in.BirthDate
		updated = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating applicant: %w", err)
	}

	s.logger.Info("applicant updated", logger.ApplicantFields(updated.ID, updated.Document)...)
	return updated, nil
}

// RemoveApplicant deletes an applicant together with its evaluation.
func (s *Service) RemoveApplicant(ctx context.Context, id string) error {
	err := s.update(ctx, func(d *Data) error {
		for i, a := range d.Applicants {
			if a.ID == id {
				d.Applicants = append(d.Applicants[:i], d.Applicants[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("applicant %s: %w", id, ErrNotFound)
	})
	if err != nil {
		return fmt.Errorf("removing applicant: %w", err)
	}

	s.logger.Info("applicant removed", logger.ApplicantFields(id, "")...)
	return nil
}

func (s *Service) GetApplicant(ctx context.Context, id string) (*Applicant, error) {
	d, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	return d.applicant(id)
}

// ListApplicants returns the applicants of a posting ordered by name.
func (s *Service) ListApplicants(ctx context.Context, postingID string) ([]*Applicant, error) {
	d, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := d.posting(postingID); err != nil {
		return nil, err
	}

	applicants := d.applicantsOf(postingID)
	sort.SliceStable(applicants, func(i, j int) bool {
		return applicants[i].FullName < applicants[j].FullName
	})
	return applicants, nil
}
