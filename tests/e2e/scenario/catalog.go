package scenario

import "strings"

// ErrorMessage matches the error paragraph every inventory form renders.
var ErrorMessage = CSS("p.MuiTypography-root[color='error']")

var form = Tag("form")

// Target is the deployment a catalog runs against.
type Target struct {
	BaseURL  string
	Email    string
	Password string
}

func (t Target) url(path string) string {
	return strings.TrimRight(t.BaseURL, "/") + path
}

// LoginSteps signs in through the login form. Product scenarios run it as a
// private setup step instead of relying on state from earlier scenarios.
func (t Target) LoginSteps() []Step {
	return []Step{
		Navigate(t.url("/login")),
		Fill(ID("email"), t.Email),
		Fill(ID("password"), t.Password),
		Submit(form),
	}
}

// Catalog returns the suite's scenarios in their declared order.
func Catalog(t Target) []Scenario {
	return []Scenario{
		{
			Order: 1,
			Name:  "ValidLogin",
			URL:   t.url("/login"),
			Fields: []Step{
				Fill(ID("email"), t.Email),
				Fill(ID("password"), t.Password),
			},
			Action: Submit(form),
			Expect: ExpectURLNotContains("/login"),
		},
		{
			Order: 2,
			Name:  "InvalidLogin",
			URL:   t.url("/login"),
			Fields: []Step{
				Fill(ID("email"), "wrong@example.com"),
				Fill(ID("password"), "wrongpass"),
			},
			Action: Submit(form),
			Expect: ExpectErrorContains(ErrorMessage, "failed", true),
		},
		{
			Order:  3,
			Name:   "EmptyLoginFields",
			URL:    t.url("/login"),
			Action: Submit(form),
			Expect: ExpectErrorVisible(ErrorMessage),
		},
		{
			Order: 4,
			Name:  "ValidSignup",
			URL:   t.url("/signup"),
			Fields: []Step{
				Fill(ID("name"), "Test User"),
				Fill(ID("email"), "newuser@example.com"),
				Fill(ID("password"), "123456"),
				Fill(ID("confirmPassword"), "123456"),
			},
			Action: Submit(form),
			Expect: ExpectURLContains("/login"),
		},
		{
			Order: 5,
			Name:  "SignupMismatchedPasswords",
			URL:   t.url("/signup"),
			Fields: []Step{
				Fill(ID("name"), "Test User"),
				Fill(ID("email"), "test@example.com"),
				Fill(ID("password"), "123456"),
				Fill(ID("confirmPassword"), "abcdef"),
			},
			Action: Submit(form),
			Expect: ExpectErrorContains(ErrorMessage, "Passwords do not match", false),
		},
		{
			Order: 6,
			Name:  "SignupDuplicateEmail",
			URL:   t.url("/signup"),
			Fields: []Step{
				Fill(ID("name"), "Test User"),
				Fill(ID("email"), t.Email),
				Fill(ID("password"), "123456"),
				Fill(ID("confirmPassword"), "123456"),
			},
			Action: Submit(form),
			Expect: ExpectErrorVisible(ErrorMessage),
		},
		{
			Order: 7,
			Name:  "AddValidProduct",
			Setup: t.LoginSteps(),
			URL:   t.url("/products/add"),
			Fields: []Step{
				Fill(Name("name"), "Laptop"),
				Fill(Name("category"), "Electronics"),
				Fill(Name("description"), "A new laptop"),
				Fill(Name("price"), "500"),
				Fill(Name("quantity"), "5"),
				Fill(Name("location"), "Aisle 1"),
			},
			Action: Submit(form),
			Expect: ExpectURLContains("/products"),
		},
		{
			Order: 8,
			Name:  "AddProductEmptyName",
			Setup: t.LoginSteps(),
			URL:   t.url("/products/add"),
			Fields: []Step{
				Fill(Name("category"), "Electronics"),
				Fill(Name("description"), "Description"),
				Fill(Name("price"), "200"),
				Fill(Name("quantity"), "2"),
				Fill(Name("location"), "Shelf 3"),
			},
			Action: Submit(form),
			// Only checks that no redirect happened; the validation text is
			// up to the server.
			Expect: ExpectURLContains("/add"),
		},
		{
			Order: 9,
			Name:  "AddProductNegativePrice",
			Setup: t.LoginSteps(),
			URL:   t.url("/products/add"),
			Fields: []Step{
				Fill(Name("name"), "Bad Product"),
				Fill(Name("category"), "Electronics"),
				Fill(Name("description"), "Invalid price"),
				Fill(Name("price"), "-100"),
				Fill(Name("quantity"), "1"),
				Fill(Name("location"), "Shelf 5"),
			},
			Action: Submit(form),
			Expect: ExpectURLContains("/add"),
		},
		{
			Order:  10,
			Name:   "LoginToSignupNavigation",
			URL:    t.url("/login"),
			Action: Click(LinkText("Don't have an account? Sign Up")),
			Expect: ExpectURLContains("/signup"),
		},
	}
}
