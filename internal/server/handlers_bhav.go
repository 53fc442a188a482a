package server

import (
	"mime/multipart"
	"net/http"
	"strconv"
)

// maxBhavUpload caps the total multipart upload size for bhavcopy endpoints.
const maxBhavUpload = 128 << 20

// formFile extracts a named multipart file, writing a 400 on failure.
func formFile(w http.ResponseWriter, r *http.Request, name string) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := r.FormFile(name)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Multipart file '"+name+"' is required")
		return nil, nil, false
	}
	return file, header, true
}

// handleBhavCompare handles POST /api/bhav/compare: two equity bhavcopy CSVs
// uploaded as 'first' and 'second', answered with per-ticker close change
// sorted descending. top=N trims to the N biggest movers.
func (s *Server) handleBhavCompare(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxBhavUpload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	firstFile, _, ok := formFile(w, r, "first")
	if !ok {
		return
	}
	defer firstFile.Close()

	secondFile, _, ok := formFile(w, r, "second")
	if !ok {
		return
	}
	defer secondFile.Close()

	first, err := s.app.BhavService.ParseEquityCSV(firstFile)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "first: "+err.Error())
		return
	}
	second, err := s.app.BhavService.ParseEquityCSV(secondFile)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "second: "+err.Error())
		return
	}

	changes := s.app.BhavService.ComparePrices(first, second)

	if top := r.FormValue("top"); top != "" {
		if n, err := strconv.Atoi(top); err == nil && n > 0 && n < len(changes) {
			changes = changes[:n]
		}
	}

	WriteJSON(w, http.StatusOK, changes)
}

// handleBhavOptions handles POST /api/bhav/options: a zipped derivatives
// bhavcopy uploaded as 'bhavcopy' plus ticker and expiry form values,
// answered with the merged option chain.
func (s *Server) handleBhavOptions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxBhavUpload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	ticker := r.FormValue("ticker")
	expiry := r.FormValue("expiry")
	if ticker == "" || expiry == "" {
		WriteError(w, http.StatusBadRequest, "Form values 'ticker' and 'expiry' are required")
		return
	}

	file, header, ok := formFile(w, r, "bhavcopy")
	if !ok {
		return
	}
	defer file.Close()

	bars, err := s.app.BhavService.ParseDerivativesZip(file, header.Size)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, s.app.BhavService.OptionChain(bars, ticker, expiry))
}

// handleBhavPCR handles POST /api/bhav/pcr: a zipped derivatives bhavcopy
// uploaded as 'bhavcopy', answered with put/call open-interest ratios.
func (s *Server) handleBhavPCR(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxBhavUpload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, ok := formFile(w, r, "bhavcopy")
	if !ok {
		return
	}
	defer file.Close()

	bars, err := s.app.BhavService.ParseDerivativesZip(file, header.Size)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ratios := s.app.BhavService.PutCallRatios(bars)

	if ticker := r.FormValue("ticker"); ticker != "" {
		filtered := ratios[:0:0]
		for _, pcr := range ratios {
			if pcr.Ticker == ticker {
				filtered = append(filtered, pcr)
			}
		}
		ratios = filtered
	}

	WriteJSON(w, http.StatusOK, ratios)
}
