package models

type Equipment struct {
	ID               string `json:"id" yaml:"id"`
	Name             string `json:"name" yaml:"name"`
	AssetNumber      string `json:"assetNumber,omitempty" yaml:"asset_number"`
	SerialNumber     string `json:"serialNumber,omitempty" yaml:"serial_number"`
	CalibrationDueAt string `json:"calibrationDueAt,omitempty" yaml:"calibration_due_at"`
	Active           bool   `json:"-" yaml:"active"`
}
