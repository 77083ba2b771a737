package longhurst

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnknownProvince indicates a province code or number with no entry in
// the selected registry. It signals a registry/boundary mismatch that
// needs operator attention, so batch callers surface it per row rather
// than skipping silently.
var ErrUnknownProvince = eris.New("longhurst: unknown province")

// Registry is an immutable bijection between small integer province
// numbers and four-letter province codes. Three numbering conventions
// circulate for the same codes (the MIT province list, the MarineRegions
// shapefile record order, and Longhurst's own numbering) and they assign
// different integers to the same code. Each convention is its own
// Registry; callers select one explicitly rather than relying on a
// process-wide default.
type Registry struct {
	name      string
	numToCode map[int]string
	codeToNum map[string]int
}

func newRegistry(name string, numToCode map[int]string) *Registry {
	codeToNum := make(map[string]int, len(numToCode))
	for n, code := range numToCode {
		codeToNum[code] = n
	}
	return &Registry{name: name, numToCode: numToCode, codeToNum: codeToNum}
}

// mitNumbers is the MIT province list order. These are not Longhurst's
// own numbers.
var mitNumbers = newRegistry("mit", map[int]string{
	1: "FKLD", 2: "CHIL", 3: "TASM", 4: "BRAZ", 5: "SATL", 6: "EAFR", 7: "AUSW",
	8: "AUSE", 9: "ISSG", 10: "BENG", 11: "ARCH", 12: "SUND", 13: "GUIN",
	14: "PEQD", 15: "MONS", 16: "ETRA", 17: "CNRY", 18: "GUIA", 19: "ARAB",
	20: "WTRA", 21: "KURO", 22: "NECS", 23: "NASE", 24: "PSAE", 25: "CHIN",
	26: "INDE", 27: "CAMR", 28: "PNEC", 29: "REDS", 30: "INDW", 31: "CARB",
	32: "NPTG", 33: "NATR", 34: "MEDI", 35: "CCAL", 36: "NWCS", 37: "NASW",
	38: "GFST", 39: "NADR", 40: "ALSK", 41: "ARCT", 42: "SARC", 43: "NEWZ",
	44: "SSTC", 45: "SPSG", 46: "PSAW", 47: "BERS", 48: "NPPF", 49: "NPSW",
	50: "ANTA", 51: "SANT", 52: "WARM", 53: "APLR", 54: "BPLR",
})

// marineRegionsNumbers is the record order of the longhurst_v4_2010
// shapefile from marineregions.org.
var marineRegionsNumbers = newRegistry("marineregions", map[int]string{
	0: "BPLR", 1: "ARCT", 2: "SARC", 3: "NADR", 4: "GFST", 5: "NASW", 6: "NATR",
	7: "WTRA", 8: "ETRA", 9: "SATL", 10: "NECS", 11: "CNRY", 12: "GUIN",
	13: "GUIA", 14: "NWCS", 15: "MEDI", 16: "CARB", 17: "NASE", 18: "BRAZ",
	19: "FKLD", 20: "BENG", 21: "MONS", 22: "ISSG", 23: "EAFR", 24: "REDS",
	25: "ARAB", 26: "INDE", 27: "INDW", 28: "AUSW", 29: "BERS", 30: "PSAE",
	31: "PSAW", 32: "KURO", 33: "NPPF", 34: "NPSW", 35: "TASM", 36: "SPSG",
	37: "NPTG", 38: "PNEC", 39: "PEQD", 40: "WARM", 41: "ARCH", 42: "ALSK",
	43: "CCAL", 44: "CAMR", 45: "CHIL", 46: "CHIN", 47: "SUND", 48: "AUSE",
	49: "NEWZ", 50: "SSTC", 51: "SANT", 52: "ANTA", 53: "APLR",
})

// longhurstNumbers are Longhurst's own province numbers. The sequence has
// deliberate gaps and a few provinces (CHSB, NPSE, OCAL, LAKE) that the
// other two conventions lack.
var longhurstNumbers = newRegistry("longhurst", map[int]string{
	1: "BPLR", 2: "ARCT", 3: "SARC", 4: "NADR", 5: "GFST", 6: "NASW", 7: "NATR",
	8: "WTRA", 9: "ETRA", 10: "SATL", 11: "NECS", 12: "CNRY", 13: "GUIN", 14: "GUIA",
	15: "NWCS", 16: "MEDI", 17: "CARB", 18: "NASE", 19: "CHSB", 20: "BRAZ", 21: "FKLD",
	22: "BENG", 30: "MONS", 31: "ISSG", 32: "EAFR", 33: "REDS", 34: "ARAB", 35: "INDE",
	36: "INDW", 37: "AUSW", 50: "BERS", 51: "PSAE", 52: "PSAW", 53: "KURO", 54: "NPPF",
	55: "NPSE", 56: "NPSW", 57: "OCAL", 58: "TASM", 59: "SPSG", 60: "NPTG", 61: "PNEC",
	62: "PEQD", 63: "WARM", 64: "ARCH", 65: "ALSK", 66: "CCAL", 67: "CAMR", 68: "CHIL",
	69: "CHIN", 70: "SUND", 71: "AUSE", 72: "NEWZ", 80: "SSTC", 81: "SANT", 82: "ANTA",
	83: "APLR", 99: "LAKE",
})

// MIT returns the MIT province list registry.
func MIT() *Registry { return mitNumbers }

// MarineRegions returns the marineregions.org shapefile-order registry.
func MarineRegions() *Registry { return marineRegionsNumbers }

// Longhurst returns the registry of Longhurst's own province numbers.
func Longhurst() *Registry { return longhurstNumbers }

// RegistryByName selects a registry variant by name: "mit",
// "marineregions", or "longhurst".
func RegistryByName(name string) (*Registry, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mit":
		return MIT(), nil
	case "marineregions":
		return MarineRegions(), nil
	case "longhurst":
		return Longhurst(), nil
	default:
		return nil, eris.Errorf("longhurst: unknown registry %q (want mit, marineregions, or longhurst)", name)
	}
}

// Name returns the registry variant name.
func (r *Registry) Name() string { return r.name }

// Len returns the number of registered provinces.
func (r *Registry) Len() int { return len(r.numToCode) }

// NumForCode returns the registry number for a province code.
func (r *Registry) NumForCode(code string) (int, error) {
	n, ok := r.codeToNum[code]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownProvince, "code %q not in registry %s", code, r.name)
	}
	return n, nil
}

// CodeForNum returns the province code for a registry number.
func (r *Registry) CodeForNum(num int) (string, error) {
	code, ok := r.numToCode[num]
	if !ok {
		return "", eris.Wrapf(ErrUnknownProvince, "number %d not in registry %s", num, r.name)
	}
	return code, nil
}

// Codes returns all registered codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.codeToNum))
	for code := range r.codeToNum {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Nums returns all registered numbers in ascending order.
func (r *Registry) Nums() []int {
	nums := make([]int, 0, len(r.numToCode))
	for n := range r.numToCode {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// provinceNames maps province codes to full descriptive names.
var provinceNames = map[string]string{
	"ALSK": "AlaskaDownwellingCoastalProvince",
	"ANTA": "AntarcticProvince",
	"APLR": "AustralPolarProvince",
	"ARAB": "NWArabianUpwellingProvince",
	"ARCH": "ArchipelagicDeepBasinsProvince",
	"ARCT": "AtlanticArcticProvince",
	"AUSE": "EastAustralianCoastalProvince",
	"AUSW": "AustraliaIndonesiaCoastalProvince",
	"BENG": "BenguelaCurrentCoastalProvince",
	"BERS": "N.PacificEpicontinentalProvince",
	"BPLR": "BorealPolarProvince(POLR)",
	"BRAZ": "BrazilCurrentCoastalProvince",
	"CAMR": "CentralAmericanCoastalProvince",
	"CARB": "CaribbeanProvince",
	"CCAL": "CaliforniaUpwellingCoastalProvince",
	"CHIL": "ChilePeruCurrentCoastalProvince",
	"CHIN": "ChinaSeaCoastalProvince",
	"CHSB": "CheasapeakeBayProvince",
	"CNRY": "CanaryCoastalProvince(EACB)",
	"EAFR": "E.AfricaCoastalProvince",
	"ETRA": "EasternTropicalAtlanticProvince",
	"FKLD": "SWAtlanticShelvesProvince",
	"GFST": "GulfStreamProvince",
	"GUIA": "GuianasCoastalProvince",
	"GUIN": "GuineaCurrentCoastalProvince",
	"INDE": "E.IndiaCoastalProvince",
	"INDW": "W.IndiaCoastalProvince",
	"ISSG": "IndianS.SubtropicalGyreProvince",
	"KURO": "KuroshioCurrentProvince",
	"LAKE": "CaspianSea,AralSea",
	"MEDI": "MediterraneanSea,BlackSeaProvince",
	"MONS": "IndianMonsoonGyresProvince",
	"NADR": "N.AtlanticDriftProvince(WWDR)",
	"NASE": "N.AtlanticSubtropicalGyralProvince(East)(STGE)",
	"NASW": "N.AtlanticSubtropicalGyralProvince(West)(STGW)",
	"NATR": "N.AtlanticTropicalGyralProvince(TRPG)",
	"NECS": "NEAtlanticShelvesProvince",
	"NEWZ": "NewZealandCoastalProvince",
	"NPPF": "N.PacificPolarFrontProvince",
	"NPSE": "N.PacificSubtropicalGyreProvince(East)",
	"NPSW": "N.PacificSubtropicalGyreProvince(West)",
	"NPTG": "N.PacificTropicalGyreProvince",
	"NWCS": "NWAtlanticShelvesProvince",
	"OCAL": "OffshoreCaliforniaCurrentProvince",
	"PEQD": "PacificEquatorialDivergenceProvince",
	"PNEC": "N.PacificEquatorialCountercurrentProvince",
	"PSAE": "PacificSubarcticGyresProvince(East)",
	"PSAW": "PacificSubarcticGyresProvince(West)",
	"REDS": "RedSea,PersianGulfProvince",
	"SANT": "SubantarcticProvince",
	"SARC": "AtlanticSubarcticProvince",
	"SATL": "SouthAtlanticGyralProvince(SATG)",
	"SPSG": "S.PacificSubtropicalGyreProvince",
	"SSTC": "S.SubtropicalConvergenceProvince",
	"SUND": "SundaArafuraShelvesProvince",
	"TASM": "TasmanSeaProvince",
	"WARM": "W.PacificWarmPoolProvince",
	"WTRA": "WesternTropicalAtlanticProvince",
}

// ProvinceName returns the full descriptive name for a province code.
func ProvinceName(code string) (string, error) {
	name, ok := provinceNames[code]
	if !ok {
		return "", eris.Wrapf(ErrUnknownProvince, "no name for code %q", code)
	}
	return name, nil
}
