package tagger

// Category is a problématique or action type with the keywords that reveal it.
type Category struct {
	Type     string   `yaml:"type" json:"type"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultProblematiques returns the built-in problématique table, in scan order.
func DefaultProblematiques() []Category {
	return []Category{
		{Type: "Fiscalité", Keywords: []string{
			"fiscal", "impot", "impôt", "tax", "revenu", "déclaration", "declaration", "aer",
			"avertissement-extrait", "précompte", "spf finances", "contribution", "taxe communale",
			"taxe régionale",
		}},
		{Type: "Santé Mentale (dont addiction)", Keywords: []string{
			"santé mentale", "psychologique", "psychiatr", "addict", "drogue", "alcool", "toxicoman",
			"dépression", "anxiété", "bipolaire", "schizophrén", "suicide", "tentative suicide",
			"burnout", "stress", "trauma", "ptsd", "thérapie", "psy", "médicament psy",
			"antidépresseur", "sevrage", "cure", "désintox",
		}},
		{Type: "CPAS", Keywords: []string{
			"cpas", "ris", "revenu d'intégration", "revenu integration", "aide sociale", "aide du cpas",
			"article 60", "article 61", "enquête sociale", "assistant social cpas", "carte médicale",
			"aide médicale urgente", "amu", "réquisitoire", "guidance",
		}},
		{Type: "Juridique", Keywords: []string{
			"juridique", "avocat", "justice", "tribunal", "plainte", "procès", "procédure", "droit",
			"litige", "contentieux", "pro deo", "aide juridique", "bureau d'aide", "juge", "jugement",
			"condamnation", "amende", "citation", "huissier", "signification", "greffe",
		}},
		{Type: "Suivi post pénitentiaire/IPPJ", Keywords: []string{
			"pénitentiaire", "penitentiaire", "prison", "ippj", "libération", "liberation",
			"sortie de prison", "conditionnelle", "surveillance", "bracelet", "détention",
			"incarcération", "maison d'arrêt", "saint-gilles", "forest", "berkendael", "réinsertion",
		}},
		{Type: "Demande d'hébergement (court et moyen terme)", Keywords: []string{
			"hébergement", "hebergement", "héberger", "heberger", "accueil", "abri", "refuge",
			"logement temporaire", "logement d'urgence", "urgence logement", "maison d'accueil",
			"samusocial", "transit", "insertion logement", "foyer", "centre d'hébergement",
		}},
		{Type: "Famille/couple", Keywords: []string{
			"famille", "couple", "conjoint", "conjointe", "parent", "enfant", "époux", "épouse",
			"divorce", "séparation", "garde", "violence conjugale", "conflit familial",
			"pension alimentaire", "droit de visite", "médiation familiale", "sap enfance", "one",
			"placement", "hébergement égalitaire", "autorité parentale",
		}},
		{Type: "Scolarité", Keywords: []string{
			"scolaire", "école", "ecole", "scolarité", "scolarite", "étude", "etude",
			"inscription scolaire", "décrochage", "redoublement", "orientation scolaire", "pms", "cefa",
			"enseignement", "professeur", "bulletin", "exclusion scolaire", "absentéisme", "devoir",
			"examen", "brevet", "cess",
		}},
		{Type: "ISP", Keywords: []string{
			"isp", "insertion socioprofessionnelle", "formation", "emploi", "stage", "job", "travail",
			"orientation professionnelle", "actiris", "forem", "vdab", "bruxelles formation", "cv",
			"lettre motivation", "entretien embauche", "chercheur d'emploi", "demandeur d'emploi",
			"intérim", "activation",
		}},
		{Type: "Santé (physique; handicap; autonomie)", Keywords: []string{
			"santé physique", "handicap", "autonomie", "maladie", "soin", "médical", "medecin",
			"infirmier", "infirmière", "hospitalisation", "prothèse", "fauteuil", "dépendance physique",
			"kiné", "rééducation", "awiph", "phare", "allocation handicap", "vierge noire", "apa",
			"inami", "mutuelle", "incapacité", "invalidité",
		}},
		{Type: "Endettement/Surendettement", Keywords: []string{
			"dette", "endettement", "surendettement", "facture", "impayé", "impayés", "huissier",
			"plan de paiement", "plan de redressement", "médiation de dettes", "rcd",
			"règlement collectif", "créancier", "recouvrement", "saisie", "commandement",
			"mise en demeure", "arriéré", "retard de paiement", "centrale des crédits",
		}},
		{Type: "Séjours", Keywords: []string{
			"séjour", "sejour", "titre de séjour", "titre de sejour", "carte de séjour",
			"carte de sejour", "régularisation", "regularisation", "demande d'asile", "asile",
			"sans-papiers", "sans papiers", "office des étrangers", "cgra", "fedasil", "annexe 35",
			"ordre de quitter", "recours", "dublin", "protection subsidiaire", "réfugié",
		}},
		{Type: "Sans abrisme", Keywords: []string{
			"sans-abri", "sans abri", "sdf", "à la rue", "a la rue", "hébergement d'urgence",
			"hebergement d'urgence", "errance", "dormeur dehors", "maraude", "front commun",
			"infirmiers de rue", "samusocial", "clochard", "itinérant",
		}},
		{Type: "Energie (eau;gaz;électricité)", Keywords: []string{
			"énergie", "energie", "eau", "gaz", "électricité", "electricite", "facture d'énergie",
			"facture d'energie", "coupure", "compteur", "fournisseur d'énergie",
			"fournisseur d'energie", "sibelga", "engie", "totalenergies", "luminus", "vivaqua",
			"hydrobru", "limiteur", "compteur à budget", "régularisation facture", "index", "relève",
			"brugel",
		}},
		{Type: "Logement", Keywords: []string{
			"loyer", "bail", "propriétaire", "locataire", "préavis", "insalubrité", "humidité",
			"moisissure", "travaux", "ais", "agence immobilière sociale", "slrb", "sisp",
			"logement social", "mutation", "candidature logement", "liste d'attente",
			"garantie locative", "bloquée", "indexation loyer", "expulsion", "commandement de quitter",
		}},
		{Type: "Médiation/Conflits de voisinage", Keywords: []string{
			// conflits
			"conflit", "dispute", "différend", "altercation", "tension", "litige", "querelle",
			"désaccord", "mésentente",
			// voisinage
			"voisin", "voisine", "voisinage", "immeuble", "copropriété", "syndic", "assemblée générale",
			"règlement copropriété",
			// nuisances
			"nuisance", "bruit", "tapage", "tapage nocturne", "musique", "fête", "travaux bruyants",
			"odeur", "odeurs", "poubelle", "poubelles", "déchet", "déchets", "saleté", "propreté",
			// animaux
			"animal", "animaux", "chien", "chat", "aboiement", "déjection", "crotte",
			// espaces communs
			"parking", "stationnement", "garage", "cave", "couloir", "escalier", "ascenseur",
			"terrasse", "balcon", "jardin", "haie", "clôture", "limite propriété", "mitoyenneté",
			"infiltration", "fuite", "dégât des eaux", "inondation", "vue", "vis-à-vis", "servitude",
			"empiétement", "arbre", "branche",
			// médiation
			"médiation", "médiateur", "conciliation", "accord", "négociation", "parties",
			"arrangement", "compromis", "entente", "solution à l'amiable",
			"plainte voisin", "main courante", "police", "intervention", "pv", "constat",
		}},
		{Type: "Autre", Keywords: []string{
			"autre", "divers", "inclassable", "non classé", "non classe",
		}},
	}
}

// DefaultActions returns the built-in action table, in scan order.
func DefaultActions() []Category {
	return []Category{
		{Type: "Appel téléphonique", Keywords: []string{"appel", "téléphone", "appelé", "contacté par téléphone", "conversation téléphonique", "joignable", "non-joignable", "injoignable"}},
		{Type: "Entretien", Keywords: []string{"entretien", "rendez-vous", "rdv", "rencontre", "visite", "reçu en entretien"}},
		{Type: "Courrier", Keywords: []string{"courrier", "lettre", "recommandé", "envoyé", "répondu", "mail", "email", "courriel"}},
		{Type: "Accompagnement", Keywords: []string{"accompagné", "accompagnement", "allé avec", "soutenu", "aidé à"}},
		{Type: "Orientation", Keywords: []string{"orienté", "orientation", "redirigé", "référé", "conseillé de contacter", "réorientation"}},
		{Type: "Document", Keywords: []string{"document", "attestation", "certificat", "formulaire", "rempli", "complété", "dossier"}},
		{Type: "Démarche administrative", Keywords: []string{"démarche", "administratif", "formalité", "inscription", "demande", "dossier introduit"}},
		{Type: "Visite à domicile", Keywords: []string{"visite à domicile", "vad", "visite domicile", "visite chez", "passé chez"}},
		{Type: "Suivi", Keywords: []string{"suivi", "relance", "rappel", "point situation", "état d'avancement", "nouvelles"}},
		{Type: "Session de médiation", Keywords: []string{"session de médiation", "séance médiation", "médiation", "médiateur", "processus de médiation"}},
		{Type: "Premier contact parties", Keywords: []string{"premier contact", "prise de contact", "contact initial", "partie demandeuse", "partie adverse"}},
		{Type: "Accord trouvé", Keywords: []string{"accord", "accord verbal", "accord écrit", "entente", "compromis", "solution", "résolution", "apaisement"}},
		{Type: "Refus d'une partie", Keywords: []string{"refus", "refus de l'une partie", "refus des deux", "refuse de participer", "ne souhaite pas"}},
		{Type: "Clôture dossier", Keywords: []string{"clôturé", "clôture", "dossier clôturé", "fermé", "fin de suivi", "statut import: clôturé"}},
		{Type: "Impossibilité technique", Keywords: []string{"impossibilité", "impossible", "non joignable", "non-joignables", "impossibilité technique"}},
	}
}
