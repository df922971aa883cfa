package registry

import "regexp"

var (
	isoDatePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoTimePattern     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	isoDateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)
	zipPattern         = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// DefaultFields returns the shipped canonical field table.
func DefaultFields() []CanonicalField {
	return []CanonicalField{
		// Timestamps
		{
			ID: "incidentDate", DisplayName: "Incident Date", Type: TypeDate, Category: CategoryTimestamp,
			Aliases: []string{"Date", "Call Date", "Alarm Date", "Inc Date", "Event Date", "Received Date", "Response Date"},
			Pattern: isoDatePattern, Example: "2024-03-15",
		},
		{
			ID: "incidentTime", DisplayName: "Incident Time", Type: TypeTime, Category: CategoryTimestamp,
			Aliases: []string{"Time", "Call Time", "Alarm Time", "Inc Time", "Event Time"},
			Pattern: isoTimePattern, Example: "14:32:10",
		},
		{
			ID: "incidentDateTime", DisplayName: "Incident Date Time", Type: TypeDateTime, Category: CategoryTimestamp,
			Aliases: []string{"DateTime", "Call DateTime", "Alarm DateTime", "Event DateTime", "Timestamp"},
			Pattern: isoDateTimePattern, Example: "2024-03-15T14:32:10",
		},
		{
			ID: "callReceivedTime", DisplayName: "Call Received Time", Type: TypeTime, Category: CategoryTimestamp,
			Aliases: []string{"Call Received", "Received Time", "Time Received", "PSAP Time", "Ring Time"},
			Pattern: isoTimePattern, Example: "14:31:02",
		},
		{
			ID: "dispatchTime", DisplayName: "Dispatch Time", Type: TypeTime, Category: CategoryTimestamp,
			Aliases: []string{"Dispatch", "Dispatched", "Dispatched Time", "Time Dispatched", "Disp Time", "Unit Dispatched", "Dispatch Date Time"},
			Pattern: isoTimePattern, Example: "14:32:10",
		},
		{
			ID: "enRouteTime", DisplayName: "En Route Time", Type: TypeTime, Category: CategoryTimestamp,
			Aliases: []string{"Enroute", "Time Enroute", "Responding", "Responding Time"},
			Pattern: isoTimePattern, Example: "14:33:40",
		},
		{
			ID: "onSceneTime", DisplayName: "On Scene Time", Type: TypeTime, Category: CategoryTimestamp,
			Aliases: []string{"On Scene", "Arrived", "Arrived Time", "Arrival Time", "Time Arrived", "Arrive Time"},
			Pattern: isoTimePattern, Example: "14:39:22",
		},
		{
			ID: "clearTime", DisplayName: "Clear Time", Type: TypeTime, Category: CategoryTimestamp,
			Aliases: []string{"Cleared", "Cleared Time", "Time Cleared", "In Service Time", "Available Time"},
			Pattern: isoTimePattern, Example: "15:10:00",
		},

		// Location
		{
			ID: "latitude", DisplayName: "Latitude", Type: TypeCoordinate, Category: CategoryLocation,
			Aliases: []string{"Lat", "Y", "Y Coordinate", "GPS Lat", "Latitude DD", "Incident Latitude"},
			Example: "40.7128",
		},
		{
			ID: "longitude", DisplayName: "Longitude", Type: TypeCoordinate, Category: CategoryLocation,
			Aliases: []string{"Lon", "Long", "Lng", "X", "X Coordinate", "GPS Long", "Longitude DD", "Incident Longitude"},
			Example: "-74.0060",
		},
		{
			ID: "location", DisplayName: "Location", Type: TypeText, Category: CategoryLocation,
			Aliases: []string{"Coordinates", "Lat/Long", "GPS Coordinates", "Geo Location"},
			Example: "40.7128,-74.0060",
		},
		{
			ID: "address", DisplayName: "Address", Type: TypeText, Category: CategoryLocation,
			Aliases: []string{"Incident Address", "Street Address", "Addr", "Full Address", "Street", "Location Address"},
			Example: "12 Main Street",
		},
		{
			ID: "city", DisplayName: "City", Type: TypeText, Category: CategoryLocation,
			Aliases: []string{"Municipality", "Town", "Jurisdiction", "Incident City"},
			Example: "Newton",
		},
		{
			ID: "state", DisplayName: "State", Type: TypeText, Category: CategoryLocation,
			Aliases: []string{"Province", "State Code"},
			Example: "NJ",
		},
		{
			ID: "zipCode", DisplayName: "Zip Code", Type: TypeText, Category: CategoryLocation,
			Aliases: []string{"Zip", "Postal Code", "ZIP5"},
			Pattern: zipPattern, Example: "07860",
		},
		{
			ID: "district", DisplayName: "District", Type: TypeText, Category: CategoryLocation,
			Aliases: []string{"Station Area", "Response Zone", "Response Area", "Beat", "First Due", "Zone"},
			Example: "Battalion 2",
		},

		// Incident
		{
			ID: "incidentId", DisplayName: "Incident ID", Type: TypeText, Category: CategoryIncident,
			Aliases: []string{
				"Incident Number", "Incident No", "Incident #", "Call Number", "Call ID", "Call No",
				"Event Number", "Event ID", "CAD Number", "CAD Incident", "Run Number", "Master Incident Number",
			},
			Example: "24-003112",
		},
		{
			ID: "incidentType", DisplayName: "Incident Type", Type: TypeText, Category: CategoryIncident,
			Aliases: []string{"Call Type", "Nature", "Nature Code", "Problem", "Problem Type", "Event Type", "Type"},
			Example: "STRUCTURE FIRE",
		},
		{
			ID: "priority", DisplayName: "Priority", Type: TypeNumber, Category: CategoryIncident,
			Aliases: []string{"Call Priority", "Priority Level", "Response Priority", "Pri"},
			Example: "1",
		},
		{
			ID: "unitId", DisplayName: "Unit ID", Type: TypeText, Category: CategoryIncident,
			Aliases: []string{"Unit", "Unit Name", "Unit Number", "Apparatus", "Responding Unit", "Vehicle"},
			Example: "E12",
		},
		{
			ID: "stationId", DisplayName: "Station", Type: TypeText, Category: CategoryIncident,
			Aliases: []string{"Station ID", "Station Number", "Station Name", "Fire Station", "Firehouse", "Stn"},
			Example: "Station 12",
		},
		{
			ID: "disposition", DisplayName: "Disposition", Type: TypeText, Category: CategoryIncident,
			Aliases: []string{"Call Disposition", "Outcome", "Result", "Close Code", "Clearance Code"},
			Example: "Fire Extinguished",
		},
		{
			ID: "narrative", DisplayName: "Narrative", Type: TypeText, Category: CategoryIncident,
			Aliases: []string{"Notes", "Call Notes", "Comments", "Remarks", "Description"},
			Example: "Smoke showing from second floor",
		},

		// NFIRS
		{
			ID: "nfirsIncidentType", DisplayName: "NFIRS Incident Type", Type: TypeText, Category: CategoryNFIRS,
			Aliases: []string{"NFIRS Type", "NFIRS Code", "Incident Type Code"},
			Example: "111",
		},
		{
			ID: "propertyUse", DisplayName: "Property Use", Type: TypeText, Category: CategoryNFIRS,
			Aliases: []string{"Property Use Code", "NFIRS Property Use"},
			Example: "419",
		},
		{
			ID: "actionTaken", DisplayName: "Action Taken", Type: TypeText, Category: CategoryNFIRS,
			Aliases: []string{"Actions Taken", "Primary Action", "Action Taken 1"},
			Example: "11",
		},
		{
			ID: "aidGivenReceived", DisplayName: "Aid Given or Received", Type: TypeText, Category: CategoryNFIRS,
			Aliases: []string{"Mutual Aid", "Aid Type"},
			Example: "N",
		},

		// Patient
		{
			ID: "patientAge", DisplayName: "Patient Age", Type: TypeNumber, Category: CategoryPatient,
			Aliases: []string{"Age", "Pt Age"},
			Example: "54",
		},
		{
			ID: "patientGender", DisplayName: "Patient Gender", Type: TypeText, Category: CategoryPatient,
			Aliases: []string{"Gender", "Sex", "Pt Sex", "Patient Sex"},
			Example: "F",
		},
		{
			ID: "chiefComplaint", DisplayName: "Chief Complaint", Type: TypeText, Category: CategoryPatient,
			Aliases: []string{"Complaint", "Primary Complaint"},
			Example: "Chest Pain",
		},
		{
			ID: "patientDisposition", DisplayName: "Patient Disposition", Type: TypeText, Category: CategoryPatient,
			Aliases: []string{"Transport Disposition", "Transport Status"},
			Example: "Transported",
		},

		// Calculated
		{
			ID: "responseTimeMinutes", DisplayName: "Response Time Minutes", Type: TypeNumber, Category: CategoryCalculated,
			Aliases: []string{"Response Time", "Response Minutes", "Resp Time", "Response Time (min)"},
			Example: "7.2",
		},
		{
			ID: "turnoutTimeMinutes", DisplayName: "Turnout Time Minutes", Type: TypeNumber, Category: CategoryCalculated,
			Aliases: []string{"Turnout Time", "Turnout Minutes", "Chute Time"},
			Example: "1.5",
		},

		// Other
		{
			ID: "shift", DisplayName: "Shift", Type: TypeText, Category: CategoryOther,
			Aliases: []string{"Platoon", "Shift ID"},
			Example: "B",
		},
	}
}

// DefaultProfiles returns the shipped tool profiles.
func DefaultProfiles() []ToolProfile {
	return []ToolProfile{
		{
			ID:               "response-time",
			Description:      "Response time analysis by unit, station and geography",
			RequiredFields:   []string{"incidentId", "incidentDate", "dispatchTime", "onSceneTime", "latitude", "longitude"},
			DateFields:       []string{"incidentDate"},
			TimeFields:       []string{"callReceivedTime", "dispatchTime", "enRouteTime", "onSceneTime"},
			CoordinateFields: []string{"latitude", "longitude"},
			OptionalFields: []string{
				"incidentTime", "unitId", "stationId", "incidentType", "priority",
				"responseTimeMinutes", "turnoutTimeMinutes", "address", "location",
			},
		},
		{
			ID:               "call-density",
			Description:      "Call density heatmap",
			RequiredFields:   []string{"incidentDate", "latitude", "longitude"},
			DateFields:       []string{"incidentDate"},
			TimeFields:       []string{"incidentTime"},
			CoordinateFields: []string{"latitude", "longitude"},
			OptionalFields:   []string{"incidentId", "incidentType", "priority", "district", "location"},
		},
		{
			ID:               "incident-map",
			Description:      "Incident map plotting",
			RequiredFields:   []string{"incidentId", "latitude", "longitude"},
			DateFields:       []string{"incidentDate"},
			TimeFields:       []string{"incidentTime"},
			CoordinateFields: []string{"latitude", "longitude"},
			OptionalFields:   []string{"incidentType", "address", "location", "unitId", "disposition", "incidentDateTime"},
		},
		{
			ID:               "station-coverage",
			Description:      "Station coverage and response-zone performance",
			RequiredFields:   []string{"stationId", "latitude", "longitude", "responseTimeMinutes"},
			DateFields:       []string{"incidentDate"},
			TimeFields:       []string{"dispatchTime", "onSceneTime"},
			CoordinateFields: []string{"latitude", "longitude"},
			OptionalFields:   []string{"unitId", "district", "incidentId", "location"},
		},
		{
			ID:             "nfirs-report",
			Description:    "NFIRS incident reporting export",
			RequiredFields: []string{"incidentId", "incidentDate", "nfirsIncidentType", "address"},
			DateFields:     []string{"incidentDate"},
			TimeFields:     []string{"callReceivedTime", "dispatchTime", "onSceneTime", "clearTime"},
			OptionalFields: []string{
				"propertyUse", "actionTaken", "aidGivenReceived", "city", "state", "zipCode", "stationId", "shift",
			},
		},
		{
			ID:             "patient-care",
			Description:    "EMS patient care summary",
			RequiredFields: []string{"incidentId", "incidentDate", "patientAge", "chiefComplaint"},
			DateFields:     []string{"incidentDate"},
			TimeFields:     []string{"dispatchTime", "onSceneTime"},
			OptionalFields: []string{"patientGender", "patientDisposition", "unitId", "responseTimeMinutes"},
		},
	}
}

// Default builds the shipped registry.
func Default() *Registry {
	return MustNew(DefaultFields(), DefaultProfiles())
}
