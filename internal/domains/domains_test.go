package domains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidBusinessDomain_Blocklist(t *testing.T) {
	t.Parallel()

	for _, blocked := range Blocklist {
		assert.False(t, IsValidBusinessDomain(blocked), blocked)
		assert.False(t, IsValidBusinessDomain("jobs."+blocked), blocked)
	}
}

func TestIsValidBusinessDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		domain string
		want   bool
	}{
		{"acmebuilders.com", true},
		{"ACMEBUILDERS.COM", true},
		{"northwind.io", true},
		{"contoso.co.uk", true},
		{"fabrikam.de", true},
		{"tailspin.org", true},
		{"", false},
		{"a.c", false},
		{"nasa.gov", false},
		{"mit.edu", false},
		{"army.mil", false},
		{"example.fr", false},
		{"example.xyz", false},
		{"en.wikipedia.org", false},
		{"www.linkedin.com", false},
		// Blocklist entries match anywhere in the domain.
		{"fedex.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsValidBusinessDomain(tt.domain))
		})
	}
}

func TestFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		link string
		want string
	}{
		{"https://www.AcmeBuilders.com/about", "acmebuilders.com"},
		{"https://acme.com", "acme.com"},
		{"https://shop.acme.com/products?id=1", "acme.com"},
		{"https://a.b.acme.io", "acme.io"},
		{"https://acme.co.uk/contact", "acme.co.uk"},
		{"https://www.acme.com.au", "acme.com.au"},
		{"http://acme.com:8080/x", "acme.com"},
		{"acme.com/path", "acme.com"},
		{"", ""},
		{"http://%zz", ""},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FromURL(tt.link))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "acme.com", Normalize(" https://www.Acme.com/ "))
	assert.Equal(t, "plant.acme.com", Normalize("plant.acme.com"))
	assert.Equal(t, "acme.com", Normalize("acme.com."))
	assert.Equal(t, "", Normalize("   "))
}

func TestSet(t *testing.T) {
	t.Parallel()

	s := NewSet("acme.com")
	assert.True(t, s.Has("acme.com"))
	assert.False(t, s.Add("acme.com"))
	assert.True(t, s.Add("globex.com"))
	assert.True(t, s.Has("globex.com"))
	assert.Len(t, s, 2)
}
