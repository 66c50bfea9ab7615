package intake

// Dialogue prompt texts.
const (
	msgGreeting               = "Hello! To file a request, please share your phone number and email."
	msgShareButton            = "Share phone number"
	msgNeedContact            = "To file a request, please share your phone number and email."
	msgAskEmail               = "Now enter your email."
	msgEmailPlaceholder       = "example@mail.com"
	msgBadEmail               = "Please enter a valid email."
	msgAskDescription         = "Please describe your request."
	msgDescriptionPlaceholder = "I want to buy a car!"
	msgThanks                 = "Thank you! One of our operators will contact you."
	msgLimitReached           = "You have reached the limit of open requests. Please wait until they are processed."
	msgHaveOpenAskAnother     = "You already have an open request. Would you like to file another one?"
	msgProcessedAskAnother    = "Your request has been processed. Would you like to file another one?"
)
