package guidance

// Messages is the text shown for each guidance outcome
type Messages struct {
	MoveLeft   string `yaml:"move_left" json:"move_left"`
	MoveRight  string `yaml:"move_right" json:"move_right"`
	MoveUp     string `yaml:"move_up" json:"move_up"`
	MoveDown   string `yaml:"move_down" json:"move_down"`
	KeepInside string `yaml:"keep_inside" json:"keep_inside"`

	MoveCloser string `yaml:"move_closer" json:"move_closer"`
	MoveBack   string `yaml:"move_back" json:"move_back"`

	AngleUpward    string `yaml:"angle_upward" json:"angle_upward"`
	AngleDownward  string `yaml:"angle_downward" json:"angle_downward"`
	AngleLeftward  string `yaml:"angle_leftward" json:"angle_leftward"`
	AngleRightward string `yaml:"angle_rightward" json:"angle_rightward"`
	AngleLeftTilt  string `yaml:"angle_left_tilt" json:"angle_left_tilt"`
	AngleRightTilt string `yaml:"angle_right_tilt" json:"angle_right_tilt"`

	FaceCamera      string `yaml:"face_camera" json:"face_camera"`
	ImproveLighting string `yaml:"improve_lighting" json:"improve_lighting"`
	Ready           string `yaml:"ready" json:"ready"`
	HoldStill       string `yaml:"hold_still" json:"hold_still"`
}

// DefaultMessages returns the English message set
func DefaultMessages() Messages {
	return Messages{
		MoveLeft:   "Move to the left",
		MoveRight:  "Move to the right",
		MoveUp:     "Move up slightly",
		MoveDown:   "Move down slightly",
		KeepInside: "Keep your face inside the guide",

		MoveCloser: "Move closer to the camera",
		MoveBack:   "Move back, you are too close",

		AngleUpward:    "Lower your face slightly",
		AngleDownward:  "Raise your face slightly",
		AngleLeftward:  "Move to the right",
		AngleRightward: "Move to the left",
		AngleLeftTilt:  "Your head is tilted left, straighten it",
		AngleRightTilt: "Your head is tilted right, straighten it",

		FaceCamera:      "Face the camera directly",
		ImproveLighting: "Find better lighting",
		Ready:           "Perfect! Ready to capture",
		HoldStill:       "Hold still",
	}
}
