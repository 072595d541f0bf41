package store

import "fmt"

// hospitalCatalogSeed returns the ten-entry catalog inserted on first access.
func hospitalCatalogSeed() []Hospital {
	out := make([]Hospital, 0, 10)
	for i := 1; i <= 10; i++ {
		out = append(out, Hospital{
			Name:           fmt.Sprintf("Specialized Hospital %d", i),
			Location:       fmt.Sprintf("City %d", i),
			Specialization: fmt.Sprintf("Specialty %d", (i%5)+1),
			Terms:          "Hospital terms apply.",
			Rating:         4.0 + float64(i%5)*0.1,
		})
	}
	return out
}

// defaultAmbulanceSeed is the single unit the pool starts with.
func defaultAmbulanceSeed() Ambulance {
	return Ambulance{
		DriverName:      "Ravi Kumar",
		DriverAge:       36,
		DriverGender:    "Male",
		DriverMobile:    "9845012345",
		AmbulanceNumber: "AMB-1001",
		NurseName:       "Priya",
		NurseAge:        29,
		NurseGender:     "Female",
		NurseMobile:     "9845099999",
	}
}
