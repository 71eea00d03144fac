package views

import "fmt"

// Visitor has one method per view. Adding a View without a method here breaks
// every implementation at compile time.
type Visitor[T any] interface {
	Login() (T, error)
	Explore(seg Segment) (T, error)
	MyRequests() (T, error)
	MyListings() (T, error)
	Profile() (T, error)
	AddBook() (T, error)
	Feedback() (T, error)
	Settings() (T, error)
	LanguagePicker() (T, error)
	AISuggest() (T, error)
	BookPreview() (T, error)
	EBooks() (T, error)
	CampusHub() (T, error)
	CampusCoin() (T, error)
	AIAssistant() (T, error)
}

func Dispatch[T any](st State, v Visitor[T]) (T, error) {
	switch st.View {
	case Login:
		return v.Login()
	case Explore:
		return v.Explore(st.Segment)
	case MyRequests:
		return v.MyRequests()
	case MyListings:
		return v.MyListings()
	case Profile:
		return v.Profile()
	case AddBook:
		return v.AddBook()
	case Feedback:
		return v.Feedback()
	case Settings:
		return v.Settings()
	case LanguagePicker:
		return v.LanguagePicker()
	case AISuggest:
		return v.AISuggest()
	case BookPreview:
		return v.BookPreview()
	case EBooks:
		return v.EBooks()
	case CampusHub:
		return v.CampusHub()
	case CampusCoin:
		return v.CampusCoin()
	case AIAssistant:
		return v.AIAssistant()
	}
	var zero T
	return zero, fmt.Errorf("%w: %d", ErrUnknownView, int(st.View))
}
