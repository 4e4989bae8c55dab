package sector

// Unspecified is the label given when no signal is available.
const Unspecified = "Non spécifié"

// Mapping associates a sector with the street keywords that identify it.
type Mapping struct {
	Sector   string   `yaml:"sector" json:"sector"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Range assigns house numbers min..max (inclusive) of a street to a sector.
type Range struct {
	Min    int    `yaml:"min" json:"min"`
	Max    int    `yaml:"max" json:"max"`
	Sector string `yaml:"sector" json:"sector"`
}

// canonicalSectors maps the lower-cased name of each known sector to its display form.
var canonicalSectors = map[string]string{
	"cureghem":  "Cureghem",
	"industrie": "Industrie",
	"la roue":   "La Roue",
	"neerpede":  "Neerpede",
	"parc":      "Parc",
	"peterbos":  "Peterbos",
	"scheut":    "Scheut",
	"vaillance": "Vaillance",
}

// DefaultMappings returns the built-in sector keyword table. Sectors are
// scanned in this order and keywords in list order; the first hit wins.
func DefaultMappings() []Mapping {
	return []Mapping{
		{Sector: "Cureghem", Keywords: []string{
			"clemenceau", "poincare", "mons 1-153", "petite senne", "equerre",
			"alphonse lemmens", "bara", "abbe cuylits", "bisse", "brogniez",
			"broyere", "bougie", "clinique", "poterie", "rosee", "autonomie",
			"liverpool", "materiaux", "megissiers", "docteur de meersman", "chimiste",
			"compas", "foppens", "gheude", "haberman", "heyvaert", "jules ruhl",
			"lambert crickx", "leon delacroix", "limnander", "memling", "moretus",
			"odon", "otlet", "plantin", "ropsy chaudron", "aviation", "robert pequeur",
			"france", "ancienne gare", "flins", "brasserie", "revision", "mons 155-451",
			"mudra", "crickx", "conseil", "grisar", "jorez", "auguste gevaert",
			"bara", "charles parente", "chome-wyns", "fiennes", "ecole moderne",
			"electricite", "instruction", "bassins", "deux gares", "goujons",
			"marchandises", "veterinaires", "docteur kuborn", "chapeau", "collecteur",
			"constructeur", "transvaal", "eloy", "emile carpentier", "ernest blerot",
			"georges moreau", "jorez", "joseph dujardin", "pasteur", "previnaire",
			"raphael", "robert bosch", "rossini", "ruysdael", "sergent de bruyne",
			"van lint", "albert ier", "jules et edmond miesse", "quai",
		}},
		{Sector: "Industrie", Keywords: []string{
			"hof ter biest", "cerf", "bollinckx", "aa", "dante", "biestebroeck",
			"bienvenue", "filature", "manufacture", "labeur", "nieuwmolen", "sel",
			"henri-joseph genesse", "paepsem", "poxcat", "humanite", "digue du canal",
			"quai", "charroi", "gouverneur nens", "emile vandervelde", "international",
			"petite-ile", "developpement", "ile sainte helene",
		}},
		{Sector: "La Roue", Keywords: []string{
			"orpins", "cardamines", "dauphinelles", "edelweiss", "immortelles",
			"millepertuis", "pimprenelles", "stellaires", "soldat britannique",
			"michel de ghelderode", "mons 1425-1447", "asters", "marguerites",
			"saponaires", "soldanelles", "chant oiseaux", "linaigrettes", "paul ooghe",
			"perseverance", "societe nationale", "saio", "droits de homme", "emile gryson",
			"eugene baie", "guillaume melckmans", "guillaume stassart", "marc henri",
			"simone veil", "venizelos", "waxweiler", "aristide briand", "mons 861-1293",
			"etangs", "marie kore", "colombophiles", "resedas", "stadium", "loups",
			"moulin", "bizet", "confort", "ernest sjonghers", "wauters", "plaine",
			"loisirs", "veeweyde", "lennik", "alexandre pierrard", "arthur dehem",
			"claude debussy", "clement de clety", "daniel van damme", "bethanie",
			"mecanique", "promenade", "solidarite", "sympathie", "tranquillite",
			"volonte", "architecture", "emancipation", "energie", "zuen", "delwart",
			"alouettes", "bateliers", "citoyens", "fraises", "grives", "huit heures",
			"plebeiens", "resedas", "trefles", "docteur roux", "bouquet", "pre",
			"savoir", "symbole", "felicien rops", "felix de cuyper", "florimond de pauw",
			"frans hals", "fridtjof nansen", "hector genard", "henri deleers", "hoorickx",
			"jacques boon", "james cook", "jean note", "pierre schlosser", "raymond ebrant",
			"robert buyck", "van winghen", "walcourt", "dreve", "hof ter vleest",
		}},
		{Sector: "Neerpede", Keywords: []string{
			"recherche", "coquelicots", "glycines", "iris", "jacinthes", "perce-neige",
			"pervenches", "luizenmolen", "auguste bourgeois", "fecondite", "salubrite",
			"chanterelles", "hortensias", "jonquilles", "lilas", "itterbeek", "henri simonet",
			"temperance", "josse leemans", "cepes", "morilles", "pleurotes", "bolet",
			"contournement", "olympique", "soetkin", "tyl uylenspiegel", "croix-rouge",
			"aurore", "tulipes", "severine", "koeivijver", "delivrance", "dignite",
			"floraison", "modestie", "sante", "enthousiasme", "hygiene", "scherdemael",
			"betteraves", "lapins", "papillons", "poulets", "quarantaines", "bonheur",
			"chaudron", "froment", "lievre", "pommier", "edouard van muylders",
			"ferdinand craps", "gaston coudyser", "jean lagey", "leon nicodeme",
			"meylemeersch", "pierre van reymenant", "scholle", "vlasendael",
			"fraternelle", "joseph wybran",
		}},
		{Sector: "Parc", Keywords: []string{
			"novateurs", "herisson", "albert de coster", "camille vaneukem",
			"capitaine fossoul", "chanoine roose", "libre academie", "roi soldat",
			"eugene ysaye", "gounod", "jean sibelius", "joseph vanhellemont",
			"pierre beyst", "theo verbeeck", "theo lambert", "agaves", "astrid",
			"pierre de tollenaere", "chopin", "docteur huet", "edgar tinel",
			"emile verse", "guillaume lekeu", "louis van beethoven", "egide rombaux",
			"marie curie", "clara clairbert", "charles de tollenaere", "claeterbosch",
			"docteur lemoine", "marius renard", "nellie melba", "romain rolland",
			"joseph bracops", "debussy", "joseph lemaire", "vives", "martin luther king",
			"antoine nys", "vigne", "jean-baptiste", "pierre longin", "frans hals",
			"jean hayet", "victor voets", "rene henry", "maurice careme", "verdi",
		}},
		{Sector: "Peterbos", Keywords: []string{
			"charles plisnier", "commandant vander meeren", "poesie", "crocus",
			"jean josee", "rene berrewaerts", "tolstoi", "maria groeninckx",
			"shakespeare", "sylvain dupuis", "ninove 623-739", "hof te ophem",
			"veld", "effort", "mercator", "rabelais", "sainte-adresse",
			"adolphe prins", "adolphe willemyns", "alphonse demunter", "buffon",
			"corneille", "cantilene", "caravelle", "competition", "corvette",
			"prose", "agrement", "agronome", "ode", "sevigne", "demosthene",
			"aubergines", "fruits", "maraichers", "broeck", "champion", "corail",
			"gazouillis", "pippenzijpe", "potaerdenberg", "roman", "serment",
			"sillon", "trophee", "elskamp", "emile hellebaut", "fenelon", "henri caron",
			"henri maes", "homere", "horace", "jean morjau", "joseph van boterdael",
			"karel vande woestijne", "lamartine", "maria tillmans", "martin van lier",
			"maurice albert raskin", "mercator", "pierre vandevoorde", "pol stoppelaere",
			"polydore moerman", "rabelais", "ronsard", "van soust", "virgile",
			"camille paulsen", "jules algoet", "grande ceinture", "sainte-adresse",
			"tarentelle",
		}},
		{Sector: "Scheut", Keywords: []string{
			"eternite", "menestrels", "missionnaires", "francois malherbe",
			"leon debatty", "norbert gille", "raymond vander bruggen", "felix paulsen",
			"jules graindor", "maurice herbette", "prince de liege", "ninove 279-505",
			"petit-obus", "semence", "beaute", "droit", "repos", "henri de smet",
			"fernand demets", "achille jonas", "beeckman de crayloo", "commandant charcot",
			"cyriel buysse", "birmingham", "dilbeek", "glasgow", "cavatine", "cordialite",
			"courtoisie", "laiterie", "pastorale", "sincerite", "verite", "agrafe",
			"aiguille", "emulation", "expansion", "libre examen", "obus", "orphelinat",
			"sebastopol", "denis verdonck", "orchidees", "parfums", "tournesols",
			"bien-etre", "bivouac", "devoir", "souvenir", "edmond delcourt",
			"edmond rostand", "general ruquoy", "jacques manne", "jakob smits",
			"james ensor", "jean van lierde", "joseph kelchtermans", "joseph pavez",
			"jules broeren", "kinet", "leopold de swaef", "louis mascre", "puccini",
			"romanie van dyck", "veld", "sylvain denayer", "thiernesse", "van wambeke",
			"verheyden", "atlas", "veterans coloniaux", "emile vander bruggen",
			"henri rey", "louis mettewie",
		}},
		{Sector: "Vaillance", Keywords: []string{
			"villa romaine", "auber", "docteur zamenhof", "frans van kalken", "limbourg",
			"paul janson", "victor et jules bertaux", "victor olivier", "saint guidon",
			"aurore", "biestebroeck", "central", "busselenberg", "resistance", "quai",
			"meir", "brune", "aumale", "douvres", "formanoir", "conciliation",
			"democratie", "gaite", "justice", "procession", "institut", "veeweyde",
			"deportes anderlechtois", "docteur jacobs", "bronze", "busselenberg",
			"chapitre", "drapeau", "greffe", "pretoire", "village", "erasme",
			"francois gerard", "francois janssens", "francois ysewyn",
			"gustaaf vanden berghe", "henri vieuxtemps", "lieutenant liedel",
			"maurice xhoneux", "pierre biddaer", "pierre marchant", "porselein",
			"professeur hendrickx", "saint guidon", "theodore bekaert", "victor rauter",
			"wayez", "elsa frison", "aristide briand", "mons 453-859", "linde", "chapelain",
		}},
	}
}

// DefaultStreetRanges returns the built-in house-number ranges, keyed by street name.
// Ranges are scanned in declared order.
func DefaultStreetRanges() map[string][]Range {
	return map[string][]Range{
		"chaussée de mons": {
			{Min: 1, Max: 153, Sector: "Cureghem"},
			{Min: 155, Max: 451, Sector: "Cureghem"},
			{Min: 453, Max: 859, Sector: "Vaillance"},
			{Min: 861, Max: 1293, Sector: "La Roue"},
			{Min: 1425, Max: 1447, Sector: "La Roue"},
		},
		"chaussée de ninove": {
			{Min: 279, Max: 505, Sector: "Scheut"},
			{Min: 623, Max: 739, Sector: "Peterbos"},
		},
	}
}

// DefaultDirectMappings returns the exact-address overrides. They are only
// consulted when a Classifier is built WithDirectMappings.
func DefaultDirectMappings() map[string]string {
	return map[string]string{
		"Sans Adresse":               Unspecified,
		"Route de Lennik":            "La Roue",
		"Rue Wayez":                  "Vaillance",
		"Chaussée de Mons 1-153":     "Cureghem",
		"Chaussée de Mons 155-451":   "Cureghem",
		"Chaussée de Mons 453-859":   "Vaillance",
		"Chaussée de Mons 861-1293":  "La Roue",
		"Chaussée de Mons 1425-1447": "La Roue",
		"Chaussée de Ninove 279-505": "Scheut",
		"Chaussée de Ninove 623-739": "Peterbos",
	}
}
