package models

import (
	"encoding/json"
	"time"
)

// SignageInstance is one physical kiosk/location's configuration record.
type SignageInstance struct {
	ID                  string          `json:"id"`
	LocationName        string          `json:"location_name"`
	QRCodeURL           *string         `json:"qr_code_url,omitempty"`
	IsActive            bool            `json:"is_active"`
	BackgroundConfig    json.RawMessage `json:"background_config,omitempty"`
	Timezone            string          `json:"timezone"`
	LogoURL             *string         `json:"logo_url,omitempty"`
	TextConfig          json.RawMessage `json:"text_config,omitempty"`
	QuestionnaireConfig json.RawMessage `json:"questionnaire_config,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// BackgroundConfig is the signage screen theme. Type is one of
// "gradient", "solid", "image".
type BackgroundConfig struct {
	Type   string   `json:"type"`
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
	URL    string   `json:"url,omitempty"`
}

// TextConfig holds the instance's display copy for the idle screen and the
// participant's default thank-you message.
type TextConfig struct {
	IdleHeading          string `json:"idleHeading,omitempty"`
	IdleSubtitle         string `json:"idleSubtitle,omitempty"`
	SessionActiveMessage string `json:"sessionActiveMessage,omitempty"`
	FooterText           string `json:"footerText,omitempty"`
	ResultMobileEmoji    string `json:"resultMobileEmoji,omitempty"`
	ResultMobileHeading  string `json:"resultMobileHeading,omitempty"`
	ResultMobileMessage  string `json:"resultMobileMessage,omitempty"`
}
