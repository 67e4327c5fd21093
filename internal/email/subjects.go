package email

const (
	subjectQuoteSummaryFmt = "Cotización enviada a %s"
	subjectQuoteFailureFmt = "Consulta sin cotizar de %s"
)
