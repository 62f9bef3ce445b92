package appointment

type BookRequest struct {
	TeacherID int64  `json:"teacher_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Purpose   string `json:"purpose" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	Message   string `json:"message"`
}

type ApproveRequest struct {
	Response string `json:"response"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type CompleteRequest struct {
	Feedback string `json:"feedback"`
}

type RateRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

type ListQuery struct {
	Status    string `form:"status"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	StudentID int64  `form:"student_id"`
	TeacherID int64  `form:"teacher_id"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}
