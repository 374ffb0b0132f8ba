package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/vrm/backend/internal/domain/people"
)

// PersonModel is the persistence model for the Person domain entity.
// The partial unique index over (lower(first_name), lower(last_name),
// date_of_birth) for active rows is created by migration, not by tags.
type PersonModel struct {
	AuditedAggregateModel
	FirstName      string        `gorm:"type:varchar(100);not null;index:idx_people_first_name"`
	MiddleName     string        `gorm:"type:varchar(100)"`
	LastName       string        `gorm:"type:varchar(100);not null;index:idx_people_last_name"`
	Suffix         string        `gorm:"type:varchar(10)"`
	DateOfBirth    *time.Time    `gorm:"type:date;index"`
	Gender         people.Gender `gorm:"type:varchar(1);not null;default:'U'"`
	Email          string        `gorm:"type:varchar(200);index"`
	PhonePrimary   string        `gorm:"type:varchar(50);index"`
	PhoneSecondary string        `gorm:"type:varchar(50);index"`
	Street         string        `gorm:"type:varchar(200)"`
	Apartment      string        `gorm:"type:varchar(50)"`
	City           string        `gorm:"type:varchar(100)"`
	County         string        `gorm:"type:varchar(100)"`
	State          string        `gorm:"type:varchar(2)"`
	ZipCode        string        `gorm:"type:varchar(10);index"`
	Occupation     string        `gorm:"type:varchar(200)"`
	Employer       string        `gorm:"type:varchar(200)"`
	Tags           pq.StringArray `gorm:"type:text[]"`
	Notes          string        `gorm:"type:text"`
	IsActive       bool          `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PersonModel) TableName() string {
	return "people"
}

// ToDomain converts the persistence model to a domain Person entity.
func (m *PersonModel) ToDomain() *people.Person {
	return &people.Person{
		AuditedAggregateRoot: m.ToDomainAuditedAggregateRoot(),
		FirstName:            m.FirstName,
		MiddleName:           m.MiddleName,
		LastName:             m.LastName,
		Suffix:               m.Suffix,
		DateOfBirth:          m.DateOfBirth,
		Gender:               m.Gender,
		Email:                m.Email,
		PhonePrimary:         m.PhonePrimary,
		PhoneSecondary:       m.PhoneSecondary,
		Street:               m.Street,
		Apartment:            m.Apartment,
		City:                 m.City,
		County:               m.County,
		State:                m.State,
		ZipCode:              m.ZipCode,
		Occupation:           m.Occupation,
		Employer:             m.Employer,
		Tags:                 []string(m.Tags),
		Notes:                m.Notes,
		IsActive:             m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Person entity.
func (m *PersonModel) FromDomain(p *people.Person) {
	m.FromDomainAuditedAggregateRoot(p.AuditedAggregateRoot)
	m.FirstName = p.FirstName
	m.MiddleName = p.MiddleName
	m.LastName = p.LastName
	m.Suffix = p.Suffix
	m.DateOfBirth = p.DateOfBirth
	m.Gender = p.Gender
	m.Email = p.Email
	m.PhonePrimary = p.PhonePrimary
	m.PhoneSecondary = p.PhoneSecondary
	m.Street = p.Street
	m.Apartment = p.Apartment
	m.City = p.City
	m.County = p.County
	m.State = p.State
	m.ZipCode = p.ZipCode
	m.Occupation = p.Occupation
	m.Employer = p.Employer
	m.Tags = pq.StringArray(p.Tags)
	m.Notes = p.Notes
	m.IsActive = p.IsActive
}

// PersonModelFromDomain creates a new persistence model from a domain Person entity.
func PersonModelFromDomain(p *people.Person) *PersonModel {
	m := &PersonModel{}
	m.FromDomain(p)
	return m
}
