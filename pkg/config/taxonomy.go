package config

// TaxonomyConfig is the parsed shape of deploy/config/taxonomy.yaml: the
// closed enum sets the extractor validates against and the API/digest
// layers render. Kept in YAML rather than only in the ent schema so an
// operator can see the active taxonomy without reading Go source.
type TaxonomyConfig struct {
	ConstraintLayers []string `yaml:"constraint_layers"`
	EventTypes       []string `yaml:"event_types"`
	Directions       []string `yaml:"directions"`
	EntityTypes      []string `yaml:"entity_types"`
	EntityRoles      []string `yaml:"entity_roles"`
	ObjectTypes      []string `yaml:"object_types"`
}

// defaultTaxonomyConfig mirrors the enum values baked into the ent schema,
// used when taxonomy.yaml omits a list entirely.
func defaultTaxonomyConfig() *TaxonomyConfig {
	return &TaxonomyConfig{
		ConstraintLayers: []string{
			"SILICON_WAFER", "ADV_PACKAGING", "HBM_MEMORY", "SUBSTRATE",
			"POWER_COOLING", "OPTICS_NETWORKING", "EDA_IP", "EQUIPMENT_TOOLS",
			"RARE_EARTH_MATERIALS", "POLICY_EXPORT_CONTROL",
		},
		EventTypes: []string{
			"LEAD_TIME_EXTENDED", "ALLOCATION", "PRICE_INCREASE", "CAPEX_ANNOUNCED",
			"CAPACITY_ONLINE", "QUALIFICATION_DELAY", "YIELD_ISSUE", "DISRUPTION",
			"POLICY_RESTRICTION",
		},
		Directions:  []string{"TIGHTENING", "EASING", "MIXED"},
		EntityTypes: []string{"COMPANY", "FACILITY", "PRODUCT", "COMPONENT", "MATERIAL", "PROCESS_TECH", "BUYER_CLASS", "GEO", "POLICY_PROGRAM", "INDEX"},
		EntityRoles: []string{"SUPPLIER", "BUYER", "DEMAND_DRIVER", "OEM", "REGULATOR", "LOCATION"},
		ObjectTypes: []string{"PRODUCT", "COMPONENT", "MATERIAL", "PROCESS_TECH"},
	}
}
