package bank

import "training-quiz-service/internal/domain"

// DefaultID identifies the built-in training bank.
const DefaultID = "dualto-nsm"

const (
	TopicPreSales              = "Pre-Sales"
	TopicPolyphonicPreparation = "Polyphonic Preparation"
	TopicDeviceShipment        = "Device Shipment"
	TopicDeviceInstallation    = "Device Installation"
)

// Default returns the built-in 22-question training bank.
func Default() domain.Bank {
	return domain.Bank{ID: DefaultID, Questions: defaultQuestions()}
}

func defaultQuestions() []domain.Question {
	return []domain.Question{
		// Pre-Sales
		{
			ID:    "q1",
			Topic: TopicPreSales,
			Kind:  domain.KindMultiSelect,
			Text:  "What are the 2 steps to be done before PO is released?",
			Options: []string{
				"Activation & Go-LIVE",
				"Polyphonic Preparation",
				"Clinical Evaluation/Hospital IT Review",
				"Connectivity Readiness",
				"Device installation",
			},
			CorrectAnswers: []int{2, 3},
		},
		{
			ID:    "q2",
			Topic: TopicPreSales,
			Kind:  domain.KindMultiSelect,
			Text:  "What are the various resources available for the sales team to engage with the hospital teams during the pre-purchase process?",
			Options: []string{
				"Intake Form",
				"IFU",
				"Price List",
				"Technical Brochure",
				"Service Brochure",
				"Connectivity Welcome Packet",
				"Cybersecurity Whitepaper",
				"Privacy & Security Technical Brief",
			},
			CorrectAnswers: []int{0, 3, 4, 5, 7},
		},
		{
			ID:    "q3",
			Topic: TopicPreSales,
			Kind:  domain.KindBlank,
			Text:  "Since these questions may be more technical for a sales team to answer, the right DRI for this stage is the ________.",
			Options: []string{
				"IT team",
				"Biomed team",
				"Dualto Specialist",
				"Cybersecurity Consultant",
				"Regional Sales Manager",
			},
			CorrectAnswers: []int{2},
		},
		{
			ID:    "q4",
			Topic: TopicPreSales,
			Kind:  domain.KindBlank,
			Text:  "If in any case, a DUALTO specialist needs information to answer the hospital's query, he would need to get in touch with ________.",
			Options: []string{
				"APAC Technical Team",
				"Bhanupriya",
				"India Technical Team",
				"Jigmee",
				"Global Technical Team",
			},
			CorrectAnswers: []int{0},
		},
		{
			ID:    "q5",
			Topic: TopicPreSales,
			Kind:  domain.KindBlanks,
			Text:  "After the IT assessment has been reviewed and approved by the Hospital IT team, the sales representative will re-engage with the Hospital IT and Biomed teams to discuss ________ & ________.",
			Options: []string{
				"Reserving a physical Ethernet port for use during installation",
				"Single Sign On (SSO)",
				"Firewall whitelisting",
				"VPN Configuration",
				"Data storage",
			},
			CorrectAnswers: []int{2, 0},
		},
		{
			ID:    "q6",
			Topic: TopicPreSales,
			Kind:  domain.KindMultiSelect,
			Text:  "What are the 2 ways in which DUALTO can be connected?",
			Options: []string{
				"Direct Ethernet connection",
				"Tethered to a connected computer",
				"Hospital Wi-Fi",
				"Bluetooth pairing",
				"VPN-based remote connection",
			},
			CorrectAnswers: []int{0, 1},
		},
		{
			ID:    "q7",
			Topic: TopicPreSales,
			Kind:  domain.KindSingleSelect,
			Text:  "Which of the following correctly describes the steps required to set up SSO Federation?",
			Options: []string{
				"Sales works with Hospital IT to complete the federation form → form is emailed to Tech Support → internal J&J team shares URLs → Hospital IT configures and activates SSO",
				"Hospital IT configures SSO → Sales submits form → URLs are generated later",
				"Sales sends request directly to Hospital IT without internal support",
				"Hospital IT activates SSO without completing the federation form",
			},
			CorrectAnswers: []int{0},
		},
		{
			ID:    "q8",
			Topic: TopicPreSales,
			Kind:  domain.KindSingleSelect,
			Text:  "What is the first action required to initiate SSO Federation for a hospital?",
			Options: []string{
				"Sales representative works with Hospital IT to fill the federation section of the connectivity welcome packet",
				"Hospital IT configures federation in their system",
				"Internal J&J team shares URLs",
				"User accounts are created in Polyphonic Fleet",
			},
			CorrectAnswers: []int{0},
		},
		{
			ID:    "q9",
			Topic: TopicPreSales,
			Kind:  domain.KindSingleSelect,
			Text:  "Once a contract is signed and a purchase order is placed, what is the next step?",
			Options: []string{
				"Create a Polyphonic Biomed Admin account to install the systems",
				"Whitelist the Dualto MAC address",
				"Schedule device installation with the Biomed team",
				"Ship the Dualto unit to the hospital",
			},
			CorrectAnswers: []int{0},
		},
		// Polyphonic Preparation
		{
			ID:    "q10",
			Topic: TopicPolyphonicPreparation,
			Kind:  domain.KindSingleSelect,
			Text:  "How many users should be set up ahead of DUALTO installation, and who should they be?",
			Options: []string{
				"One Biomed User, available post-installation",
				"Two Biomed Users, created by Hospital IT",
				"Two Biomed Admin Users, with at least one available to perform installation",
				"One Biomed Admin User and one Surgeon User",
			},
			CorrectAnswers: []int{2},
		},
		{
			ID:    "q11",
			Topic: TopicPolyphonicPreparation,
			Kind:  domain.KindOrder,
			Text:  "Arrange the steps required to set up a Polyphonic account in the correct order:",
			Options: []string{
				"Sales submits an intake form to the Polyphonic Customer Support team",
				"Internal teams create the accounts",
				"Hospital Biomed Admin receives activation and login emails",
			},
			CorrectOrder: []int{0, 1, 2},
		},
		{
			ID:    "q12",
			Topic: TopicPolyphonicPreparation,
			Kind:  domain.KindMultiSelect,
			Text:  "What are the 3 activities a Biomed Admin user can do, that a Biomed user cannot?",
			Options: []string{
				"User management",
				"Facility management",
				"Generation of an audit log",
				"Ability to view a list of all devices",
				"Setup new devices",
				"Performing software updates",
				"Updating security certificates",
				"Uploading event logs",
			},
			CorrectAnswers: []int{0, 1, 2},
		},
		{
			ID:    "q13",
			Topic: TopicPolyphonicPreparation,
			Kind:  domain.KindMultiSelect,
			Text:  "Which of the following statements are TRUE for Polyphonic account setup based on whether SSO is enabled? (Select all that apply)",
			Options: []string{
				"If SSO is enabled, Biomed Admin accounts are automatically activated",
				"If SSO is enabled, users must click an activation link within 7 days",
				"If SSO is not enabled, Biomed Admin users must set up MFA within 7 days",
				"If SSO is not enabled, users receive only one email to log in",
				"If SSO is enabled, users receive only one email with a login link",
				"If the activation email expires (non-SSO), a new one can be requested via TechSupportAPAC@its.jnj.com",
			},
			CorrectAnswers: []int{0, 2, 4, 5},
		},
		// Device Shipment
		{
			ID:    "q14",
			Topic: TopicDeviceShipment,
			Kind:  domain.KindMultiSelect,
			Text:  "Once DUALTO units are shipped, which actions are the responsibility of the Sales Representative? (Select all that apply)",
			Options: []string{
				"Assign systems to the hospital in Mission Control",
				"Receive MAC addresses from the shipping team",
				"Work with Hospital IT to get MAC addresses whitelisted",
				"Work with Hospital IT to get URLs whitelisted",
				"Confirm that a physical Ethernet port is reserved",
				"Confirm that SSO federation is complete (as needed)",
				"Perform device assembly and guided setup",
			},
			CorrectAnswers: []int{0, 2, 3, 4},
		},
		{
			ID:    "q15",
			Topic: TopicDeviceShipment,
			Kind:  domain.KindOrder,
			Text:  "Arrange the following steps in the correct order after DUALTO units are shipped:",
			Options: []string{
				"Systems are assigned to the hospital in Mission Control",
				"MAC addresses are emailed to the sales/marketing team",
				"Sales works with Hospital IT to whitelist MAC addresses & URLs",
				"Sales confirms Ethernet port reservation and SSO status",
			},
			CorrectOrder: []int{0, 1, 2, 3},
		},
		{
			ID:    "q16",
			Topic: TopicDeviceShipment,
			Kind:  domain.KindSingleSelect,
			Text:  "What is the purpose of providing the DUALTO MAC address to the Hospital IT team?",
			Options: []string{
				"To assign a user account to the device",
				"To generate login credentials for Polyphonic Fleet",
				"To identify the physical devices being connected to the hospital network",
				"To configure Single Sign On (SSO)",
			},
			CorrectAnswers: []int{2},
		},
		{
			ID:    "q17",
			Topic: TopicDeviceShipment,
			Kind:  domain.KindSingleSelect,
			Text:  "Why must the URLs used by DUALTO be whitelisted before installation?",
			Options: []string{
				"To create Biomed user accounts in Polyphonic Fleet",
				"To assign IP addresses to DUALTO devices",
				"To allow the DUALTO device to connect to the hospital network",
				"To activate Single Sign-On (SSO)",
			},
			CorrectAnswers: []int{2},
		},
		{
			ID:    "q18",
			Topic: TopicDeviceShipment,
			Kind:  domain.KindMultiSelect,
			Text:  "Which of the following statements correctly describe MAC address and URL whitelisting for DUALTO? (Select all that apply)",
			Options: []string{
				"MAC address whitelisting allows Hospital IT to identify the physical DUALTO devices being connected to the network",
				"URL whitelisting enables the DUALTO device to connect to the hospital network",
				"If MAC addresses and URLs are not whitelisted, DUALTO systems cannot be installed",
				"MAC and URL whitelisting assign IP addresses to the DUALTO device",
				"Whitelisting typically takes 5–10 minutes but may extend to 48–72 hours due to hospital policies",
				"MAC and URL whitelisting are performed by the sales representative directly",
			},
			CorrectAnswers: []int{0, 1, 2, 4},
		},
		// Device Installation
		{
			ID:    "q19",
			Topic: TopicDeviceInstallation,
			Kind:  domain.KindBlanks,
			Text:  "In the assembly process, after removing modules from their respective packaging, we need to save the certificate in the ________ as it has the ________.",
			Options: []string{
				"communications module box",
				"energy module packaging",
				"user screen",
				"shipping carton",
				"MAC address",
				"IP address",
				"serial number",
				"login credentials",
			},
			CorrectAnswers: []int{0, 4},
		},
		{
			ID:    "q20",
			Topic: TopicDeviceInstallation,
			Kind:  domain.KindMultiSelect,
			Text:  "Which of the following settings can be customized on DUALTO? (Select all that apply)",
			Options: []string{
				"Screen brightness",
				"System volume",
				"Default energy settings",
				"Surgeon / procedure profiles",
				"Network firewall rules",
				"User login credentials",
			},
			CorrectAnswers: []int{0, 1, 2, 3},
		},
		{
			ID:    "q21",
			Topic: TopicDeviceInstallation,
			Kind:  domain.KindBlanks,
			Text:  "To perform output verification, a Biomed needs a ________ and a ________. Instructions for output verification and electrical safety testing can be found in the ________.",
			Options: []string{
				"DUALTO output verification key (ETHOVK)",
				"Footswitch",
				"Power adapter",
				"Network cable",
				"Service manual",
				"Connectivity Welcome Packet",
				"User Guide (Quick Start)",
			},
			CorrectAnswers: []int{0, 1, 4},
		},
		{
			ID:    "q22",
			Topic: TopicDeviceInstallation,
			Kind:  domain.KindMultiSelect,
			Text:  "With what topics can the J&J Tech Support team assist? (Select all that apply)",
			Options: []string{
				"DUALTO questions or issues",
				"POLYPHONIC Fleet questions or issues",
				"Connectivity or IT related questions or issues",
				"Warranty extensions",
				"Workflow optimizing consulting",
				"Service contract negotiation",
			},
			CorrectAnswers: []int{0, 1, 2},
		},
	}
}
