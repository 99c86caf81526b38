package processors

import (
	"github.com/username/mpesaviz/backend/src/models"
	"github.com/username/mpesaviz/backend/src/utils"
)

// netFlowTolerance is the absolute tolerance for the cross-validation of
// computed net flow against the TOTAL summary row.
const netFlowTolerance = 0.01

type netFlowProcessorImpl struct{}

func NewNetFlowProcessor() NetFlowProcessor {
	return &netFlowProcessorImpl{}
}

func (p *netFlowProcessorImpl) Process(statement *models.Statement) models.NetFlow {
	var flow models.NetFlow

	for _, tx := range statement.Transactions {
		if tx.PaidIn != nil {
			flow.TotalIn += *tx.PaidIn
		}
		if tx.Withdrawn != nil {
			flow.TotalOut += *tx.Withdrawn
		}
	}
	flow.Count = len(statement.Transactions)
	flow.Net = utils.RoundFloat(flow.TotalIn-flow.TotalOut, 2)

	// Newest-first ordering: the first transaction carries the current balance.
	if flow.Count > 0 {
		flow.CurrentBalance = statement.Transactions[0].Balance
	}

	if total, ok := statement.Total(); ok {
		flow.SummaryNet = utils.RoundFloat(total.PaidIn-total.PaidOut, 2)
		flow.Delta = utils.RoundFloat(flow.Net-flow.SummaryNet, 2)
		flow.Reconciles = utils.WithinTolerance(flow.Net, flow.SummaryNet, netFlowTolerance)
	}

	return flow
}
