package sqlinline

const QInsertJob = `--sql 8c4a2f70-1b6d-4e93-a07c-3d5f9e21b846
insert into generation_jobs (id, project_id, device_id, task_type, status, provider, segment_index, payload_json, created_at, updated_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, 'QUEUED', $5::text, $6::int, coalesce($7::jsonb, '{}'::jsonb), now(), now());
`

const QUpdateJobStatus = `--sql 2f9e6a83-7c05-4d14-b6e8-0a3b5d72c491
update generation_jobs
set status = $2::text,
    error_message = coalesce($3::text, error_message),
    result_json = coalesce($4::jsonb, result_json),
    updated_at = now()
where id = $1::uuid;
`

const QSelectJobByID = `--sql 6d1b8e47-3a92-4f60-95cd-7e24b0a8f153
select id, project_id, device_id, task_type, status, provider, segment_index,
       payload_json, coalesce(result_json, 'null'::jsonb), coalesce(error_message, ''), created_at, updated_at
from generation_jobs
where id = $1::uuid;
`
