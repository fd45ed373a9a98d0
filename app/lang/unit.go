package lang

import "strings"

// convPair is one direction of a unit conversion: from * Factor = to.
// The reverse direction is derived when the lookup map is built.
type convPair struct {
	From, To string
	Factor   float64
}

var convPairs = []convPair{
	// length
	{"m", "cm", 100},
	{"cm", "mm", 10},
	{"in", "cm", 2.54},
	{"ft", "m", 0.3048},
	{"mm", "m", 1.0 / 1000},
	{"km", "m", 1000},
	{"mi", "km", 1.60934},
	{"mi", "m", 1609.34},
	{"in", "mm", 25.4},
	{"ft", "in", 12},
	{"yd", "ft", 3},
	{"yd", "m", 0.9144},

	// area
	{"m2", "cm2", 10000},
	{"km2", "m2", 1000000},
	{"ha", "m2", 10000},
	{"acre", "m2", 4046.86},
	{"acre", "ha", 0.404686},
	{"mi2", "km2", 2.58999},

	// volume
	{"ml", "l", 1.0 / 1000},
	{"ml", "tsp", 0.2},
	{"ml", "tbsp", 1.0 / 15},
	{"ml", "teasp", 0.2},
	{"l", "gal", 0.264172},
	{"cup", "ml", 236.588},
	{"pt", "ml", 473.176},
	{"qt", "ml", 946.353},
	{"floz", "ml", 29.5735},
	{"cup", "floz", 8},
	{"m3", "l", 1000},
	{"ft3", "m3", 0.0283168},

	// mass
	{"g", "kg", 1.0 / 1000},
	{"lb", "kg", 0.453592},
	{"oz", "g", 28.3495},
	{"mg", "g", 1.0 / 1000},
	{"kg", "ton", 1.0 / 1000},
	{"lb", "oz", 16},
	{"st", "lb", 14},
	{"st", "kg", 6.35029},

	// time
	{"ms", "s", 1.0 / 1000},
	{"us", "ms", 1.0 / 1000},
	{"ns", "us", 1.0 / 1000},
	{"min", "s", 60},
	{"h", "min", 60},
	{"h", "s", 3600},
	{"day", "h", 24},
	{"day", "s", 86400},
	{"week", "day", 7},
	{"month", "day", 30.44},
	{"year", "day", 365.25},
	{"year", "month", 12},
	{"decade", "year", 10},
	{"century", "year", 100},

	// data storage, 1024-based
	{"KB", "B", 1024},
	{"MB", "KB", 1024},
	{"GB", "MB", 1024},
	{"TB", "GB", 1024},
	{"PB", "TB", 1024},
	{"B", "bit", 8},

	// energy
	{"kJ", "J", 1000},
	{"cal", "J", 4.184},
	{"kcal", "cal", 1000},
	{"kWh", "J", 3600000},
	{"eV", "J", 1.602176634e-19},

	// power
	{"kW", "W", 1000},
	{"MW", "kW", 1000},
	{"hp", "W", 745.7},
	{"hp", "kW", 0.7457},

	// pressure
	{"kPa", "Pa", 1000},
	{"bar", "kPa", 100},
	{"psi", "kPa", 6.895},
	{"atm", "kPa", 101.325},

	// speed
	{"mps", "kmph", 3.6},
	{"mph", "kmph", 1.60934},
	{"mph", "mps", 0.44704},
	{"knot", "kmph", 1.852},
}

// unitAliases maps lowercased input spellings to canonical unit names.
// Canonical names with uppercase letters need entries here because lookup
// always lowercases first.
var unitAliases = map[string]string{
	// time
	"minute": "min", "minutes": "min", "mins": "min",
	"second": "s", "seconds": "s", "sec": "s", "secs": "s",
	"hour": "h", "hours": "h", "hr": "h", "hrs": "h",
	"millisecond": "ms", "milliseconds": "ms", "msec": "ms", "msecs": "ms",
	"microsecond": "us", "microseconds": "us", "usec": "us", "usecs": "us",
	"nanosecond": "ns", "nanoseconds": "ns", "nsec": "ns", "nsecs": "ns",
	"days": "day", "weeks": "week", "months": "month", "years": "year",

	// length
	"meter": "m", "meters": "m", "metre": "m", "metres": "m",
	"centimeters": "cm", "centimetre": "cm", "centimetres": "cm",
	"millimeters": "mm", "millimetre": "mm", "millimetres": "mm",
	"kilometers": "km", "kilometre": "km", "kilometres": "km",
	"inches": "in", "feet": "ft", "foot": "ft", "yards": "yd", "miles": "mi",

	// mass
	"grams": "g", "kilograms": "kg", "kgs": "kg", "kilos": "kg",
	"milligrams": "mg", "pounds": "lb", "lbs": "lb", "ounces": "oz",
	"tons": "ton", "tonnes": "ton", "stones": "st",

	// volume
	"milliliters": "ml", "millilitres": "ml",
	"liters": "l", "litres": "l",
	"teaspoons": "tsp", "tablespoons": "tbsp", "cups": "cup",
	"pints": "pt", "quarts": "qt", "gallons": "gal",
	"fluid ounces": "floz", "fluidounces": "floz",

	// data
	"b": "B", "bytes": "B",
	"kb": "KB", "kilobytes": "KB",
	"mb": "MB", "megabytes": "MB",
	"gb": "GB", "gigabytes": "GB",
	"tb": "TB", "terabytes": "TB",
	"pb": "PB", "petabytes": "PB",
	"bits": "bit",

	// temperature
	"c": "C", "celsius": "C", "centigrade": "C",
	"f": "F", "fahrenheit": "F",
	"k": "K", "kelvin": "K",

	// energy
	"j": "J", "joules": "J",
	"kj": "kJ", "kilojoules": "kJ",
	"calories": "cal", "kilocalories": "kcal", "kcals": "kcal",
	"kwh": "kWh", "kilowatt hours": "kWh", "kilowatt-hours": "kWh",
	"ev": "eV", "electron volts": "eV",

	// power
	"w": "W", "watts": "W",
	"kw": "kW", "kilowatts": "kW",
	"mw": "MW", "megawatts": "MW",
	"horsepower": "hp",

	// pressure
	"pa": "Pa", "pascals": "Pa",
	"kpa": "kPa", "kilopascals": "kPa",
	"bars": "bar",
	"pounds per square inch": "psi",
	"atmospheres": "atm",

	// speed
	"meters per second": "mps", "metres per second": "mps",
	"kilometers per hour": "kmph", "kilometres per hour": "kmph", "kph": "kmph",
	"miles per hour": "mph",
	"knots": "knot",
}

var (
	convTable  map[[2]string]float64
	knownUnits map[string]bool
)

func init() {
	convTable = make(map[[2]string]float64, 2*len(convPairs))
	knownUnits = make(map[string]bool)
	for _, p := range convPairs {
		convTable[[2]string{p.From, p.To}] = p.Factor
		convTable[[2]string{p.To, p.From}] = 1 / p.Factor
		knownUnits[strings.ToLower(p.From)] = true
		knownUnits[strings.ToLower(p.To)] = true
	}
	// temperature units are convertible but not in the multiplicative table
	for _, u := range []string{"c", "f", "k"} {
		knownUnits[u] = true
	}
}

// NormalizeUnit maps a unit spelling to its canonical form. Matching is
// case-insensitive; unknown three-letter alphabetic input is treated as a
// currency code and uppercased.
func NormalizeUnit(name string) string {
	u := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := unitAliases[u]; ok {
		return canon
	}
	if knownUnits[u] {
		return u
	}
	if len(u) == 3 && allLowercaseAlpha(u) {
		return strings.ToUpper(u)
	}
	return u
}

func allLowercaseAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return len(s) > 0
}

// ConvertUnits converts value between two units, normalizing both spellings
// first. Currency-shaped pairs go through the rate cache; temperature is
// affine; everything else uses the pairwise factor table. There is no
// transitive chaining: a pair missing from the table does not convert.
func ConvertUnits(value float64, from, to string, rates *Rates) (float64, bool) {
	from = NormalizeUnit(from)
	to = NormalizeUnit(to)

	if isCurrencyCode(from) && isCurrencyCode(to) {
		if rates == nil {
			return 0, false
		}
		rate, ok := rates.Get(from, to)
		if !ok {
			return 0, false
		}
		return value * rate, true
	}

	if v, ok := convertTemperature(value, from, to); ok {
		return v, true
	}
	if from == to {
		return value, true
	}
	if factor, ok := convTable[[2]string{from, to}]; ok {
		return value * factor, true
	}
	return 0, false
}

func convertTemperature(value float64, from, to string) (float64, bool) {
	switch [2]string{from, to} {
	case [2]string{"C", "F"}:
		return value*9/5 + 32, true
	case [2]string{"F", "C"}:
		return (value - 32) * 5 / 9, true
	case [2]string{"C", "K"}:
		return value + 273.15, true
	case [2]string{"K", "C"}:
		return value - 273.15, true
	case [2]string{"F", "K"}:
		return (value + 459.67) * 5 / 9, true
	case [2]string{"K", "F"}:
		return value*9/5 - 459.67, true
	}
	return 0, false
}
