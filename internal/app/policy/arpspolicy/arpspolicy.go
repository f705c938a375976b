// Package arpspolicy computes the Annual Research Performance Score (ARPS)
// for a faculty member from their accepted incentive claims and sanctioned
// extramural grants.
//
// Scoring rules:
//   - Publications: base points by subtype (paper quartile table, book,
//     book chapter, conference presentation) times an author-position
//     multiplier. 50% weight, capped at 50 points.
//   - Patents: base points by status and locale times an applicant
//     multiplier. 15% weight, capped at 15 points.
//   - EMR grants: tiered flat award by sanctioned amount and PI vs co-PI
//     role. 15% weight, capped at 15 points.
//
// The total maps to a letter grade at fixed thresholds.
package arpspolicy

import (
	"github.com/campusworks/researchdesk/internal/domain/models"
)

// Base point values for publications.
const (
	PointsQ1       = 100
	PointsQ2       = 75
	PointsQ3       = 50
	PointsQ4       = 30
	PointsUnlisted = 10

	PointsBook       = 50
	PointsChapter    = 20
	PointsConference = 20
)

// Base point values for patents.
const (
	PointsPatentPublished    = 10
	PointsPatentGrantedIndia = 50
	PointsPatentGrantedIntl  = 75
)

// Author-position multipliers for publications.
const (
	MultiplierLeadAuthor    = 0.7 // First or Corresponding, any position
	MultiplierCoAuthorEarly = 0.3 // Co-Author, position 1-5
	MultiplierCoAuthorLate  = 0.1 // Co-Author, position 6+
)

// Applicant multipliers for patents.
const (
	MultiplierSoleApplicant  = 1.0
	MultiplierJointApplicant = 0.8
)

// Sub-score weights and caps.
const (
	WeightPublication = 0.5
	WeightPatent      = 0.15
	WeightEmr         = 0.15

	CapPublication = 50.0
	CapPatent      = 15.0
	CapEmr         = 15.0
)

// Grade thresholds on the weighted total.
const (
	GradeSEE = "SEE" // Significantly Exceeds Expectations, >= 80
	GradeEE  = "EE"  // Exceeds Expectations, >= 50
	GradeME  = "ME"  // Meets Expectations, >= 30
	GradeDME = "DME" // Does not Meet Expectations
)

// EmrGrant is the slice of a sanctioned external grant that scoring needs.
type EmrGrant struct {
	SanctionedAmount float64
	IsPI             bool
}

// Breakdown is the full ARPS result for one user and year.
type Breakdown struct {
	PublicationRaw float64 `json:"publication_raw"`
	PatentRaw      float64 `json:"patent_raw"`
	EmrRaw         float64 `json:"emr_raw"`

	PublicationScore float64 `json:"publication_score"`
	PatentScore      float64 `json:"patent_score"`
	EmrScore         float64 `json:"emr_score"`

	Total float64 `json:"total"`
	Grade string  `json:"grade"`
}

// Compute calculates the ARPS breakdown from accepted claims and sanctioned
// EMR grants. Claims that are not Accepted are ignored so callers can pass
// an unfiltered year's claims.
func Compute(claims []models.IncentiveClaim, grants []EmrGrant) Breakdown {
	var pubRaw, patRaw float64
	for _, c := range claims {
		if c.Status != models.ClaimAccepted {
			continue
		}
		switch c.ClaimType {
		case models.ClaimResearchPaper, models.ClaimBook, models.ClaimConference:
			pubRaw += PublicationPoints(c)
		case models.ClaimPatent:
			patRaw += PatentPoints(c)
		}
	}

	var emrRaw float64
	for _, g := range grants {
		emrRaw += EmrPoints(g.SanctionedAmount, g.IsPI)
	}

	b := Breakdown{
		PublicationRaw:   pubRaw,
		PatentRaw:        patRaw,
		EmrRaw:           emrRaw,
		PublicationScore: capped(pubRaw*WeightPublication, CapPublication),
		PatentScore:      capped(patRaw*WeightPatent, CapPatent),
		EmrScore:         capped(emrRaw*WeightEmr, CapEmr),
	}
	b.Total = b.PublicationScore + b.PatentScore + b.EmrScore
	b.Grade = Grade(b.Total)
	return b
}

// PublicationPoints returns the raw point value of a paper, book, or
// conference claim: base points times the author multiplier.
func PublicationPoints(c models.IncentiveClaim) float64 {
	var base float64
	switch c.ClaimType {
	case models.ClaimResearchPaper:
		base = quartilePoints(c.Quartile)
	case models.ClaimBook:
		if c.BookType == "chapter" {
			base = PointsChapter
		} else {
			base = PointsBook
		}
	case models.ClaimConference:
		base = PointsConference
	default:
		return 0
	}
	return base * AuthorMultiplier(c.AuthorType, c.AuthorPosition)
}

// AuthorMultiplier returns the author-position multiplier. First and
// Corresponding authors score 0.7 regardless of position; co-authors score
// by position.
func AuthorMultiplier(authorType string, position int) float64 {
	switch authorType {
	case models.AuthorFirst, models.AuthorCorresponding:
		return MultiplierLeadAuthor
	case models.AuthorCo:
		if position >= 1 && position <= 5 {
			return MultiplierCoAuthorEarly
		}
		return MultiplierCoAuthorLate
	}
	return 0
}

// PatentPoints returns the raw point value of a patent claim. A patent not
// filed in the university's name scores zero.
func PatentPoints(c models.IncentiveClaim) float64 {
	if !c.FiledInPuName {
		return 0
	}

	var base float64
	switch c.PatentStatus {
	case models.PatentPublished:
		base = PointsPatentPublished
	case models.PatentGranted:
		if c.PatentLocale == models.PatentLocaleForeign {
			base = PointsPatentGrantedIntl
		} else {
			base = PointsPatentGrantedIndia
		}
	default: // Filed
		return 0
	}

	if c.IsPuSoleApplicant {
		return base * MultiplierSoleApplicant
	}
	return base * MultiplierJointApplicant
}

// EMR award tiers by sanctioned amount, in rupees.
const (
	emrTierTop = 50_00_000
	emrTierMid = 20_00_000
	emrTierLow = 5_00_000
)

// EmrPoints returns the flat award for one sanctioned grant.
func EmrPoints(amount float64, isPI bool) float64 {
	switch {
	case amount >= emrTierTop:
		if isPI {
			return 100
		}
		return 30
	case amount >= emrTierMid:
		if isPI {
			return 50
		}
		return 15
	case amount >= emrTierLow:
		if isPI {
			return 30
		}
		return 10
	default:
		if isPI {
			return 10
		}
		return 5
	}
}

// Grade maps a weighted ARPS total to its letter grade.
func Grade(total float64) string {
	switch {
	case total >= 80:
		return GradeSEE
	case total >= 50:
		return GradeEE
	case total >= 30:
		return GradeME
	default:
		return GradeDME
	}
}

func capped(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}

func quartilePoints(q string) float64 {
	switch q {
	case "Q1":
		return PointsQ1
	case "Q2":
		return PointsQ2
	case "Q3":
		return PointsQ3
	case "Q4":
		return PointsQ4
	}
	return PointsUnlisted
}
