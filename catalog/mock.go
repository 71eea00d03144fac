package catalog

import (
	"time"

	"campus_shelf/models"
)

// LibraryDonor 图书馆捐赠书目的固定捐书人，seed 时幂等
const LibraryDonor = "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0100"

var mockEpoch = time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)

// MockPeers 校园圈里的演示同学
func MockPeers() []models.User {
	return []models.User{
		{ID: "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0002", Name: "Sarah Miller", Email: "sarah@mit.edu", College: "MIT", Branch: "Architecture", Year: "3rd Year", Role: models.RoleStudent, DonationScore: 12, CampusCoins: 45},
		{ID: "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0005", Name: "David Chen", Email: "david@mit.edu", College: "MIT", Branch: "Computer Science", Year: "2nd Year", Role: models.RoleStudent, DonationScore: 4, CampusCoins: 8},
		{ID: "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0008", Name: "Priya Sharma", Email: "priya@mit.edu", College: "MIT", Branch: "Electrical Eng", Year: "4th Year", Role: models.RoleStudent, DonationScore: 15, CampusCoins: 31},
		{ID: "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0009", Name: "James Wilson", Email: "james@mit.edu", College: "MIT", Branch: "Mathematics", Year: "1st Year", Role: models.RoleStudent, DonationScore: 1, CampusCoins: 2},
		{ID: LibraryDonor, Name: "MIT Central Library", Email: "library@mit.edu", College: "MIT", Branch: "Library", Role: models.RoleInstitution},
	}
}

func MockBooks() []models.Book {
	mk := func(i int, b models.Book) models.Book {
		b.CreatedAt = mockEpoch.Add(time.Duration(i) * time.Hour)
		if b.Condition == "" {
			b.Condition = models.ConditionGood
		}
		return b
	}
	return []models.Book{
		mk(0, models.Book{ID: "book_1", Title: "Introduction to Algorithms", Author: "Thomas H. Cormen", Condition: models.ConditionLikeNew, IsUrgent: true, DonorID: "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0005", College: "MIT", Branch: "Computer Science", Location: "Stata Center", Area: "Cambridge", PhoneNumber: "617-555-0105", ContactNumber: "617-555-0105", MarketPrice: 95, CurrentPrice: 40}),
		mk(1, models.Book{ID: "book_2", Title: "Engineering Mathematics", Author: "K.A. Stroud", DonorID: "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0008", College: "MIT", Branch: "Electrical Eng", Location: "Building 10", Area: "Cambridge", PhoneNumber: "617-555-0108", ContactNumber: "617-555-0108", MarketPrice: 60, CurrentPrice: 25}),
		mk(2, models.Book{ID: "book_3", Title: "Architecture: Form, Space, and Order", Author: "Francis D.K. Ching", Condition: models.ConditionFair, DonorID: "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0002", College: "MIT", Branch: "Architecture", Location: "Building 7", Area: "Cambridge", PhoneNumber: "617-555-0102", ContactNumber: "617-555-0102", MarketPrice: 45, CurrentPrice: 15}),
		mk(3, models.Book{ID: "book_4", Title: "Calculus: Early Transcendentals", Author: "James Stewart", IsUrgent: true, DonorID: "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0009", College: "MIT", Branch: "Mathematics", Location: "Building 2", Area: "Cambridge", PhoneNumber: "617-555-0109", ContactNumber: "617-555-0109", MarketPrice: 120, CurrentPrice: 50}),
		mk(4, models.Book{ID: "book_5", Title: "The Feynman Lectures on Physics", Author: "Richard P. Feynman", Condition: models.ConditionNew, IsInstitutionDonated: true, DonorID: LibraryDonor, College: "MIT", Branch: "Physics", Location: "Hayden Library", Area: "Cambridge", PhoneNumber: "617-555-0100", ContactNumber: "617-555-0100"}),
		mk(5, models.Book{ID: "book_6", Title: "Structure and Interpretation of Computer Programs", Author: "Harold Abelson", IsInstitutionDonated: true, DonorID: LibraryDonor, College: "MIT", Branch: "Computer Science", Location: "Hayden Library", Area: "Cambridge", PhoneNumber: "617-555-0100", ContactNumber: "617-555-0100"}),
		mk(6, models.Book{ID: "book_7", Title: "Principles of Economics", Author: "N. Gregory Mankiw", Condition: models.ConditionPoor, DonorID: "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0002", College: "Harvard", Branch: "Economics", Location: "Widener", Area: "Harvard Square", PhoneNumber: "617-555-0102", ContactNumber: "617-555-0102", MarketPrice: 80, CurrentPrice: 20}),
		mk(7, models.Book{ID: "book_8", Title: "Digital Design", Author: "M. Morris Mano", DonorID: "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0008", College: "Stanford", Branch: "Electrical Eng", Location: "Gates", Area: "Palo Alto", PhoneNumber: "617-555-0108", ContactNumber: "617-555-0108", MarketPrice: 70, CurrentPrice: 30}),
	}
}
