package memory

import (
	"github.com/google/uuid"

	"github.com/drbooking/booking-api/internal/model"
)

// Seed catalog for the self-contained memory driver. Mirrors the demo
// dataset the product launched with.
func seedCatalog() ([]*model.Specialty, []*model.Doctor) {
	specialties := []*model.Specialty{
		{ID: uuid.New(), Name: "Médecine générale", Description: "Soins médicaux de premier recours"},
		{ID: uuid.New(), Name: "Cardiologie", Description: "Maladies du cœur et des vaisseaux"},
		{ID: uuid.New(), Name: "Dermatologie", Description: "Maladies de la peau"},
		{ID: uuid.New(), Name: "Pédiatrie", Description: "Soins des enfants et adolescents"},
		{ID: uuid.New(), Name: "Gynécologie", Description: "Santé des femmes"},
		{ID: uuid.New(), Name: "Ophtalmologie", Description: "Soins des yeux"},
	}

	doctors := []*model.Doctor{
		{ID: uuid.New(), FirstName: "Jean", LastName: "Dupont", SpecialtyID: specialties[0].ID, ImageURL: "/avatars/doctor-1.jpg", Location: "Paris 11e", Gender: model.GenderMale, Rating: 4.7, ReviewCount: 132},
		{ID: uuid.New(), FirstName: "Marie", LastName: "Laurent", SpecialtyID: specialties[0].ID, ImageURL: "/avatars/doctor-2.jpg", Location: "Paris 9e", Gender: model.GenderFemale, Rating: 4.9, ReviewCount: 89},
		{ID: uuid.New(), FirstName: "Philippe", LastName: "Martin", SpecialtyID: specialties[1].ID, ImageURL: "/avatars/doctor-3.jpg", Location: "Lyon 3e", Gender: model.GenderMale, Rating: 4.5, ReviewCount: 201},
		{ID: uuid.New(), FirstName: "Sophie", LastName: "Lefevre", SpecialtyID: specialties[2].ID, ImageURL: "/avatars/doctor-4.jpg", Location: "Paris 15e", Gender: model.GenderFemale, Rating: 4.8, ReviewCount: 64},
		{ID: uuid.New(), FirstName: "Thomas", LastName: "Moreau", SpecialtyID: specialties[3].ID, ImageURL: "/avatars/doctor-5.jpg", Location: "Marseille 6e", Gender: model.GenderMale, Rating: 4.6, ReviewCount: 118},
		{ID: uuid.New(), FirstName: "Claire", LastName: "Bernard", SpecialtyID: specialties[4].ID, ImageURL: "/avatars/doctor-6.jpg", Location: "Bordeaux", Gender: model.GenderFemale, Rating: 4.9, ReviewCount: 157},
	}

	return specialties, doctors
}
