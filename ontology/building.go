package ontology

// Brick-flavored building-energy ontology. Entity labels and relationship
// tokens follow the Brick Schema naming used by the graph loader
// (brick_Building, brick_hasPart, ...). Declaration order matters: it is the
// deterministic tie-break for entity resolution and hop-chain selection.

// Brick relationship-type tokens.
const (
	EdgeHasPart       = "brick_hasPart"
	EdgeHasMember     = "brick_hasMember"
	EdgeHasPoint      = "brick_hasPoint"
	EdgeFeeds         = "brick_feeds"
	EdgeIsMeteredBy   = "brick_isMeteredBy"
	EdgeHasTimeseries = "brick_hasTimeseries"
)

// BuildingOntology constructs the shipped building-energy registry. It is
// the process-wide domain model: call it once at startup and inject the
// result into every pipeline stage.
func BuildingOntology() (*Registry, error) {
	entities := []EntityType{
		{
			Name:    "Building",
			Label:   "brick_Building",
			GraphQL: "building",
			Plural:  "buildings",
			Display: map[Language]string{LanguageNorwegian: "bygninger", LanguageEnglish: "buildings"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
				{Name: "address", Type: FieldString, Primary: true},
				{Name: "area_sqm", Type: FieldNumber, Primary: true},
				{Name: "year_built", Type: FieldNumber},
				{Name: "energy_class", Type: FieldEnum},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"bygning", "bygg", "hus", "operahus", "operahuset"},
				LanguageEnglish:   {"building", "facility", "structure"},
			},
		},
		{
			Name:    "Floor",
			Label:   "brick_Floor",
			GraphQL: "floor",
			Plural:  "floors",
			Display: map[Language]string{LanguageNorwegian: "etasjer", LanguageEnglish: "floors"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
				{Name: "level", Type: FieldNumber, Primary: true},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"etasje", "etasjer", "nivå"},
				LanguageEnglish:   {"floor", "storey", "story"},
			},
		},
		{
			Name:    "HVAC_Zone",
			Label:   "brick_HVAC_Zone",
			GraphQL: "zone",
			Plural:  "zones",
			Display: map[Language]string{LanguageNorwegian: "soner", LanguageEnglish: "zones"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"sone", "soner", "ventilasjonssone", "område"},
				LanguageEnglish:   {"zone", "zones", "hvac zone", "area", "space"},
			},
		},
		{
			Name:    "HVAC_System",
			Label:   "brick_HVAC_System",
			GraphQL: "hvacSystem",
			Plural:  "hvacSystems",
			Display: map[Language]string{LanguageNorwegian: "ventilasjonsanlegg", LanguageEnglish: "HVAC systems"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"ventilasjonsanlegg", "hvac", "klimaanlegg", "varmeanlegg"},
				LanguageEnglish:   {"hvac system", "hvac", "ventilation system", "climate system"},
			},
		},
		{
			Name:    "Air_Handling_Unit",
			Label:   "brick_Air_Handling_Unit",
			GraphQL: "airHandlingUnit",
			Plural:  "airHandlingUnits",
			Display: map[Language]string{LanguageNorwegian: "aggregater", LanguageEnglish: "air handling units"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
				{Name: "manufacturer", Type: FieldString, Primary: true},
				{Name: "model", Type: FieldString, Primary: true},
				{Name: "capacity", Type: FieldNumber},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"aggregat", "hovedaggregat", "luftbehandler", "ventilasjonsenhet"},
				LanguageEnglish:   {"ahu", "air handling unit", "air handler"},
			},
		},
		{
			Name:    "Chiller",
			Label:   "brick_Chiller",
			GraphQL: "chiller",
			Plural:  "chillers",
			Display: map[Language]string{LanguageNorwegian: "kjølemaskiner", LanguageEnglish: "chillers"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
				{Name: "manufacturer", Type: FieldString, Primary: true},
				{Name: "model", Type: FieldString, Primary: true},
				{Name: "capacity", Type: FieldNumber},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"kjølemaskin", "kjøleanlegg"},
				LanguageEnglish:   {"chiller", "cooling unit", "cooling machine"},
			},
		},
		{
			Name:    "Pump",
			Label:   "brick_Pump",
			GraphQL: "pump",
			Plural:  "pumps",
			Display: map[Language]string{LanguageNorwegian: "pumper", LanguageEnglish: "pumps"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
				{Name: "manufacturer", Type: FieldString, Primary: true},
				{Name: "capacity", Type: FieldNumber, Primary: true},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"pumpe", "sirkulasjonspumpe", "vannpumpe"},
				LanguageEnglish:   {"pump", "circulation pump"},
			},
		},
		{
			Name:    "Electrical_Meter",
			Label:   "brick_Electrical_Meter",
			GraphQL: "electricalMeter",
			Plural:  "electricalMeters",
			Display: map[Language]string{LanguageNorwegian: "strømmålere", LanguageEnglish: "electrical meters"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
				{Name: "unit", Type: FieldString, Primary: true},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"strømmåler", "elmåler", "elektrisitetsmåler", "hovedmåler", "måler", "målere"},
				LanguageEnglish:   {"electrical meter", "power meter", "electricity meter", "meter", "meters"},
			},
		},
		{
			Name:    "Temperature_Sensor",
			Label:   "brick_Temperature_Sensor",
			GraphQL: "temperatureSensor",
			Plural:  "temperatureSensors",
			Display: map[Language]string{LanguageNorwegian: "temperatursensorer", LanguageEnglish: "temperature sensors"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
				{Name: "unit", Type: FieldString, Primary: true},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"temperatursensor", "temperaturføler", "temperatur"},
				LanguageEnglish:   {"temperature sensor", "temp sensor", "temperature"},
			},
		},
		{
			Name:    "Power_Sensor",
			Label:   "brick_Power_Sensor",
			GraphQL: "powerSensor",
			Plural:  "powerSensors",
			Display: map[Language]string{LanguageNorwegian: "effektsensorer", LanguageEnglish: "power sensors"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
				{Name: "unit", Type: FieldString, Primary: true},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"effektmåler", "wattmåler", "strømsensor", "effekt"},
				LanguageEnglish:   {"power sensor", "watt sensor"},
			},
		},
		{
			Name:    "CO2_Sensor",
			Label:   "brick_CO2_Sensor",
			GraphQL: "co2Sensor",
			Plural:  "co2Sensors",
			Display: map[Language]string{LanguageNorwegian: "co2-sensorer", LanguageEnglish: "CO2 sensors"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "name", Type: FieldString},
				{Name: "unit", Type: FieldString, Primary: true},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"co2-sensor", "co2", "luftkvalitet"},
				LanguageEnglish:   {"co2 sensor", "carbon dioxide sensor", "air quality"},
			},
		},
		{
			Name:    "Timeseries",
			Label:   "brick_Timeseries",
			GraphQL: "timeseries",
			Plural:  "timeseriesList",
			Display: map[Language]string{LanguageNorwegian: "tidsserier", LanguageEnglish: "timeseries"},
			Fields: []Field{
				{Name: "id", Type: FieldID},
				{Name: "external_id", Type: FieldString, Primary: true},
				{Name: "resolution", Type: FieldString, Primary: true},
			},
			Synonyms: map[Language][]string{
				LanguageNorwegian: {"tidsserie", "tidsserier", "målinger", "historikk"},
				LanguageEnglish:   {"timeseries", "time series", "measurements", "history"},
			},
		},
	}

	relations := []Relation{
		{Source: "Building", Target: "Floor", Name: "hasPart", Alias: "floors", EdgeType: EdgeHasPart, Many: true},
		{Source: "Floor", Target: "HVAC_Zone", Name: "hasPart", Alias: "zones", EdgeType: EdgeHasPart, Many: true},
		{Source: "Building", Target: "HVAC_System", Name: "hasPart", Alias: "systems", EdgeType: EdgeHasPart, Many: true},
		{Source: "HVAC_System", Target: "Air_Handling_Unit", Name: "hasMember", Alias: "units", EdgeType: EdgeHasMember, Many: true},
		{Source: "Air_Handling_Unit", Target: "HVAC_Zone", Name: "feeds", Alias: "zones", EdgeType: EdgeFeeds, Many: true},
		{Source: "Air_Handling_Unit", Target: "Temperature_Sensor", Name: "hasPoint", Alias: "sensors", EdgeType: EdgeHasPoint, Many: true},
		{Source: "HVAC_Zone", Target: "Temperature_Sensor", Name: "hasPoint", Alias: "sensors", EdgeType: EdgeHasPoint, Many: true},
		{Source: "HVAC_Zone", Target: "CO2_Sensor", Name: "hasPoint", Alias: "co2Sensors", EdgeType: EdgeHasPoint, Many: true},
		{Source: "Building", Target: "Electrical_Meter", Name: "isMeteredBy", Alias: "meters", EdgeType: EdgeIsMeteredBy, Many: true},
		{Source: "Temperature_Sensor", Target: "Timeseries", Name: "hasTimeseries", Alias: "timeseries", EdgeType: EdgeHasTimeseries},
		{Source: "Power_Sensor", Target: "Timeseries", Name: "hasTimeseries", Alias: "timeseries", EdgeType: EdgeHasTimeseries},
		{Source: "CO2_Sensor", Target: "Timeseries", Name: "hasTimeseries", Alias: "timeseries", EdgeType: EdgeHasTimeseries},
	}

	chains := []HopChain{
		// "zones of building": Building -> Floor -> HVAC_Zone
		{Alias: "zones", Source: "Building", Target: "HVAC_Zone", Hops: []string{"floors", "zones"}},
		// "sensors in building": Building -> Floor -> HVAC_Zone -> Temperature_Sensor
		{Alias: "sensors", Source: "Building", Target: "Temperature_Sensor", Hops: []string{"floors", "zones", "sensors"}},
		// "sensors of system": HVAC_System -> AHU -> Temperature_Sensor
		{Alias: "sensors", Source: "HVAC_System", Target: "Temperature_Sensor", Hops: []string{"units", "sensors"}},
	}

	return NewRegistry(entities, relations, chains)
}
