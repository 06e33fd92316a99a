package synth

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// Anonymization categories a catalog column may declare. Closed set: a column
// registered with any other value is rejected at catalog-write time.
const (
	CategoryName             = "name"
	CategoryAddress          = "address"
	CategoryEmail            = "email"
	CategoryDate             = "date"
	CategoryDateTime         = "date_time"
	CategoryTime             = "time"
	CategoryNationalID       = "national_id"
	CategoryNationalRegistry = "national_registry"
	CategoryIPv4             = "ipv4"
	CategoryIPv6             = "ipv6"
	CategoryPhoneNumber      = "phone_number"
	CategoryCellphoneNumber  = "cellphone_number"
)

// generators maps each category to its value producer. Every producer draws
// exactly once from the seeded faker so the seed-to-value mapping stays stable.
var generators = map[string]func(f *gofakeit.Faker) string{
	CategoryName:    func(f *gofakeit.Faker) string { return f.Name() },
	CategoryAddress: func(f *gofakeit.Faker) string { return f.Address().Address },
	CategoryEmail:   func(f *gofakeit.Faker) string { return f.Email() },
	CategoryDate: func(f *gofakeit.Faker) string {
		return f.Date().Format("2006-01-02")
	},
	CategoryDateTime: func(f *gofakeit.Faker) string {
		return f.Date().Format("2006-01-02 15:04:05")
	},
	CategoryTime: func(f *gofakeit.Faker) string {
		return f.Date().Format("15:04:05")
	},
	CategoryNationalID: func(f *gofakeit.Faker) string {
		// Formatted national id; separators are stripped before storage.
		return stripSeparators(f.Numerify("###.###.###-##"))
	},
	CategoryNationalRegistry: func(f *gofakeit.Faker) string {
		return fixMaskedDigit(f.Numerify("##.###.###-") + registryCheckDigit(f))
	},
	CategoryIPv4: func(f *gofakeit.Faker) string { return f.IPv4Address() },
	CategoryIPv6: func(f *gofakeit.Faker) string { return f.IPv6Address() },
	CategoryPhoneNumber: func(f *gofakeit.Faker) string {
		return f.PhoneFormatted()
	},
	CategoryCellphoneNumber: func(f *gofakeit.Faker) string {
		return f.Phone()
	},
}

// Categories returns all valid anonymization categories.
func Categories() []string {
	return []string{
		CategoryName,
		CategoryAddress,
		CategoryEmail,
		CategoryDate,
		CategoryDateTime,
		CategoryTime,
		CategoryNationalID,
		CategoryNationalRegistry,
		CategoryIPv4,
		CategoryIPv6,
		CategoryPhoneNumber,
		CategoryCellphoneNumber,
	}
}

// IsValidCategory reports whether category is in the closed category set.
func IsValidCategory(category string) bool {
	_, ok := generators[category]
	return ok
}

// SeedString builds the deterministic seed for one cell. The same
// (database, table, column, primary key, original value) tuple always yields
// the same seed and therefore the same synthetic output across runs. Callers
// stringify the primary key and original cell value before building the seed.
func SeedString(databaseID, tableID uint, column, pk, original string) string {
	return fmt.Sprintf("db%dtable%dcolumn%srow%svalue%s", databaseID, tableID, column, pk, original)
}

// Generate produces the synthetic replacement for one cell. The seed string
// is hashed to a 64-bit faker seed; identical seeds yield identical output
// for a fixed library version.
func Generate(category, seed string) (string, error) {
	gen, ok := generators[category]
	if !ok {
		return "", fmt.Errorf("unknown anonymization category %q", category)
	}
	return gen(gofakeit.New(hashSeed(seed))), nil
}

func hashSeed(seed string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return h.Sum64()
}

// stripSeparators removes the punctuation separators from a formatted
// national id, leaving digits only.
func stripSeparators(id string) string {
	id = strings.ReplaceAll(id, ".", "")
	return strings.ReplaceAll(id, "-", "")
}

// registryCheckDigit draws the registry check digit, which may be the
// literal mask character "X".
func registryCheckDigit(f *gofakeit.Faker) string {
	n := f.Number(0, 10)
	if n == 10 {
		return "X"
	}
	return fmt.Sprintf("%d", n)
}

// fixMaskedDigit replaces the masking character literal "X" with "0".
func fixMaskedDigit(registry string) string {
	return strings.ReplaceAll(registry, "X", "0")
}
