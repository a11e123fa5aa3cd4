package models

import "strings"

// Subelement is one of the ten exam groups (T1..T0)
type Subelement struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"questionCount"` // questions drawn from this group on the exam
}

// Subelements lists the exam groups in exam order. The question counts add up
// to ExamQuestionCount.
var Subelements = []Subelement{
	{ID: "T1", Name: "FCC Rules, Descriptions and Definitions", QuestionCount: 6},
	{ID: "T2", Name: "Operating Procedures", QuestionCount: 3},
	{ID: "T3", Name: "Radio Wave Characteristics", QuestionCount: 3},
	{ID: "T4", Name: "Amateur Radio Practices and Station Setup", QuestionCount: 2},
	{ID: "T5", Name: "Electrical Principles", QuestionCount: 4},
	{ID: "T6", Name: "Electrical Components", QuestionCount: 4},
	{ID: "T7", Name: "Practical Circuits", QuestionCount: 4},
	{ID: "T8", Name: "Signals and Emissions", QuestionCount: 4},
	{ID: "T9", Name: "Antennas and Feed Lines", QuestionCount: 2},
	{ID: "T0", Name: "Electrical and RF Safety", QuestionCount: 3},
}

// ExamQuestionCount is the length of a Technician exam.
const ExamQuestionCount = 35

var sectionTopics = map[string]string{
	"T1A": "FCC Rules and Regulations",
	"T1B": "Station Control and Frequency Authorization",
	"T1C": "Amateur Radio Licensing",
	"T1D": "Authorized and Prohibited Transmissions",
	"T1E": "Control Operator and Control Types",
	"T1F": "Station Identification",
	"T2A": "VHF/UHF Operating Practices",
	"T2B": "Repeater Operating Procedures",
	"T2C": "Emergency and Public Service Communications",
	"T3A": "Radio Wave Propagation",
	"T3B": "Radio and Electromagnetic Wave Properties",
	"T3C": "Satellite and Space Communications",
	"T4A": "Station Setup and Operation",
	"T4B": "Telephones, Computer and Mobile Devices",
	"T5A": "Electrical Principles and Units",
	"T5B": "Math for Electronics",
	"T5C": "Electronic Principles",
	"T5D": "Ohm's Law and Power",
	"T6A": "Electrical Components",
	"T6B": "Semiconductors",
	"T6C": "Circuit Diagrams and Schematic Symbols",
	"T6D": "Component Functions",
	"T7A": "Receiver Fundamentals",
	"T7B": "Transmitter and Transceiver Operation",
	"T7C": "Test Equipment and Measurements",
	"T7D": "Meters and Radio Direction Finding",
	"T8A": "Modulation Modes",
	"T8B": "Amateur Satellite Service",
	"T8C": "Operating Activities and Procedures",
	"T8D": "Non-Voice Communications",
	"T9A": "Antenna Basics",
	"T9B": "Feed Lines and SWR",
	"T0A": "Electrical Safety",
	"T0B": "Antenna and Tower Safety",
	"T0C": "RF Exposure and Environmental Safety",
}

// SubelementGroup returns the two-character group of a subelement or
// question id ("T1A" and "T1A01" both give "T1").
func SubelementGroup(id string) string {
	if len(id) < 2 {
		return id
	}
	return strings.ToUpper(id[:2])
}

// SubelementFromQuestionID returns the three-character subelement of a
// question id ("T1A01" gives "T1A").
func SubelementFromQuestionID(id string) string {
	if len(id) < 3 {
		return id
	}
	return strings.ToUpper(id[:3])
}

// LookupSubelement finds the exam group that id belongs to.
func LookupSubelement(id string) (Subelement, bool) {
	group := SubelementGroup(id)
	for _, s := range Subelements {
		if s.ID == group {
			return s, true
		}
	}
	return Subelement{}, false
}

// SectionTopic names a three-character subelement such as "T5D".
func SectionTopic(subelement string) string {
	if name, ok := sectionTopics[strings.ToUpper(subelement)]; ok {
		return name
	}
	return "amateur radio operations"
}
