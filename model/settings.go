package model

const SettingsTypeRTSP = "rtsp"

// Settings is the singleton stream source configuration. The discriminator
// is stored as the document _id, so at most one document per type can exist.
type Settings struct {
	Type    string `json:"type" bson:"_id"`
	RTSPURL string `json:"rtspUrl" bson:"rtspUrl"`
}
