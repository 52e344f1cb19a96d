package octopus

import (
	"fmt"
	"strings"

	"github.com/anicoll/solarroi/internal/pkg/model"
)

// ResolveTariff picks the tariff code active on day (ISO date string) from
// the meter's agreement history. Agreements are scanned in the order the
// retailer returns them; the first one whose window contains the day wins.
// The trailing agreement's valid_to is known to be unreliable in the feed, so
// the last agreement matches on valid_from alone. A false result means the
// day has no tariff and must be costed at zero.
func ResolveTariff(agreements []model.Agreement, day string) (string, bool) {
	for i, agreement := range agreements {
		inWindow := day >= agreement.ValidFrom &&
			(agreement.ValidTo == nil || day < *agreement.ValidTo)
		lastResort := i == len(agreements)-1 && day >= agreement.ValidFrom
		if inWindow || lastResort {
			return agreement.TariffCode, true
		}
	}
	return "", false
}

// ProductCode derives the product code from a tariff code of the form
// <prefix>-<prefix2>-<product...>-<region>: everything between the first two
// and the last hyphen-separated tokens.
func ProductCode(tariffCode string) (string, error) {
	parts := strings.Split(tariffCode, "-")
	if len(parts) < 4 {
		return "", fmt.Errorf("tariff code %q has too few segments", tariffCode)
	}
	return strings.Join(parts[2:len(parts)-1], "-"), nil
}
