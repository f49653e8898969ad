package errors

import "fmt"

// UserMessage renders a clarifying, user-facing message for a pipeline error
// in the given language ("no" or "en"). Planning-time errors produce a
// precise hint naming the entity or field; transient execution errors produce
// a generic service-unavailable line. Unrecognized languages fall back to
// English.
func UserMessage(err error, language string) string {
	if err == nil {
		return ""
	}

	var se *StageError
	if !As(err, &se) {
		se = &StageError{Err: err}
	}

	no := language == "no"

	switch {
	case Is(err, ErrUnknownEntity):
		if no {
			if se.Entity != "" {
				return fmt.Sprintf("Jeg kjenner ikke til %q. Prøv å spørre om bygninger, soner, sensorer eller målere.", se.Entity)
			}
			return "Jeg fant ingen kjent enhet i spørsmålet. Prøv å spørre om bygninger, soner, sensorer eller målere."
		}
		if se.Entity != "" {
			return fmt.Sprintf("I don't recognize %q. Try asking about buildings, zones, sensors or meters.", se.Entity)
		}
		return "I couldn't find a known entity in the question. Try asking about buildings, zones, sensors or meters."

	case Is(err, ErrUnknownField):
		if no {
			return fmt.Sprintf("Feltet %q finnes ikke for %s.", se.Field, se.Entity)
		}
		return fmt.Sprintf("The field %q does not exist on %s.", se.Field, se.Entity)

	case Is(err, ErrAmbiguousIntent):
		if no {
			return "Jeg forsto ikke spørsmålet. Kan du omformulere det?"
		}
		return "I didn't understand the question. Could you rephrase it?"

	case Is(err, ErrInvalidParameter):
		if no {
			return fmt.Sprintf("Verdien for %q er ugyldig for %s.", se.Field, se.Entity)
		}
		return fmt.Sprintf("The value for %q is not valid for %s.", se.Field, se.Entity)

	case Is(err, ErrQueryExecution):
		if no {
			return "Tjenesten er ikke tilgjengelig akkurat nå. Prøv igjen senere."
		}
		return "The service is unavailable right now. Please try again later."

	default:
		if no {
			return "Noe gikk galt under behandling av spørsmålet."
		}
		return "Something went wrong while processing the question."
	}
}
